// Package version exposes build-time version metadata.
package version

// RulemergeVersion is the semantic version string embedded at build time.
var RulemergeVersion = "0.0.0-src"

// Set version at compile time with
// go build -ldflags "-X rulemerge/pkg/version.RulemergeVersion=1.0.0" -o rulemerge

// For a release build with version and optimization flags:
// go build -ldflags "-s -w -X rulemerge/pkg/version.RulemergeVersion=1.0.0" -o rulemerge
