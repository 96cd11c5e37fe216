package projects

import "time"

// timeNow is a package-level variable for testability.
// Tests replace it to control creation and edit stamps.
var timeNow = time.Now
