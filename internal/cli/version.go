package cli

// Version is the generator version stamped into every emitted file's
// header comment, per SPEC_FULL.md §6 ("Per-file header comment includes
// the generator version").
const Version = "0.1.0"
