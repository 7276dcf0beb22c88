// Package validate holds the allow-list input checks used before any
// user-controlled string reaches git, the filesystem, or a provider.
//
// Every check is a narrow allow-list (length bound plus character class);
// the commit-message and path checks add a small deny-list of suspicious
// substrings on top. The patterns and bounds are part of the tool's
// external contract: changing them changes its security posture.
package validate
