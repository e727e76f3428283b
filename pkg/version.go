package daybook

// Version is the daybook release version.
const Version = "0.2.0"
