package main

// pipdepsVersion is overridden by the release build with
// -ldflags "-X main.pipdepsVersion=<version>".
var pipdepsVersion = "1.0.0-dev"
