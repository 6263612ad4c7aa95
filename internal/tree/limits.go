package tree

// MaxPathLen bounds a single relative path's byte length in the binary
// archive format, mirroring the original's MAX_PATH_LEN. Paths at or
// beyond this length are dropped from the live walk with a warning
// (the spec leaves this open; dropping matches the original's posture
// of refusing to serialize an oversize path rather than truncating it).
const MaxPathLen = 4096
