package winproc

// Version is the current version of the go-winproc library
const Version = "1.0.0"
