package utils

import "os"

var userHomeDir = os.UserHomeDir
