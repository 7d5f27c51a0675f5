package constants

import "os"

const (
	// DefaultFilePermissions sets the default permissions for regular files: (rw-r--r--).
	// Owner: read and write;
	// Group: read;
	// Others: read.
	DefaultFilePermissions os.FileMode = 0o644

	// PrivateFilePermissions sets the permissions for files that may hold secrets: (rw-------).
	// Owner: read and write.
	PrivateFilePermissions os.FileMode = 0o600
)
