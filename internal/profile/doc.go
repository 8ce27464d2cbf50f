// Package profile persists named credential profiles.
//
// Profiles live in a single YAML file, by default
// ~/.config/cloudctl/profiles.yaml:
//
//	default-profile: work
//	profiles:
//	  - name: work
//	    token: AstraCS:...
//	    environment: prod
//
// Storage implements cli.ProfileStore, so the kernel resolves the active
// profile straight from this file. The file is written with owner-only
// permissions.
package profile
