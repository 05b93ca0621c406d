// Package sources supplies raw block-list lines to the merger: it reads the
// source list and alias table and downloads each configured list.
package sources

// Source describes one configured block-list location.
type Source struct {
	// ID is the URL or local path the list is read from.
	ID   string
	Auth AuthConfig
}

// AuthConfig defines optional authentication for a source.
type AuthConfig struct {
	Username string
	Password string
	Token    string
	Header   string
	Scheme   string
}

// ListConfig defines an inline source from the configuration file. The
// table key is used as the alias.
type ListConfig struct {
	URL      string `mapstructure:"url"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Token    string `mapstructure:"token"`
	Header   string `mapstructure:"header"`
	Scheme   string `mapstructure:"scheme"`
}
