// Package testutil provides fixture trees for tests.
//
// # Ad-hoc Trees
//
// WriteTree builds a directory from a map of slash-separated paths:
//
//	root := testutil.WriteTree(t, map[string]string{
//	    "app.py":           "from flask import Flask\n",
//	    "requirements.txt": "flask==2.0\n",
//	    "empty/":           "",
//	})
//
// Symlink and MakeUnreadable add the degraded entries the analyzer must
// tolerate.
//
// # Sample Repositories
//
// Realistic repositories are embedded under testdata/repos and copied into
// a temporary directory on demand:
//
//	flask     one Flask app, a requirements file, an ignored node_modules
//	webapp    Express/React service with Docker, compose, CI, env template
//	polyglot  Rust, Python and Ruby manifests, shebang script, build output
//
//	root := testutil.SampleRepo(t, "webapp")
package testutil
