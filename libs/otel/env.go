package otelx

import "os"

// Swapped in tests.
var lookupEnv = os.LookupEnv
