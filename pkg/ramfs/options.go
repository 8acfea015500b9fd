package ramfs

import (
	"strconv"
	"strings"

	"github.com/marmos91/ramfs/internal/logger"
	"github.com/marmos91/ramfs/pkg/vfs"
)

// DefaultRootMode is the permission set applied to the root directory
// when the mount options do not override it.
const DefaultRootMode uint32 = 0o755

// mountOptions is the parsed form of a mount option string.
type mountOptions struct {
	// mode is the root directory's permission bits.
	mode uint32
}

// parseOptions parses a comma-separated option string. A malformed
// value for a known option fails the mount; unknown options are
// ignored so option strings written for richer drivers still mount.
func parseOptions(options string) (mountOptions, error) {
	opts := mountOptions{mode: DefaultRootMode}
	if options == "" {
		return opts, nil
	}

	for _, token := range strings.Split(options, ",") {
		if token == "" {
			continue
		}
		key, value, _ := strings.Cut(token, "=")
		switch key {
		case "mode":
			mode, err := strconv.ParseUint(value, 8, 32)
			if err != nil {
				return opts, vfs.NewInvalidArgumentError("invalid mode option: " + value)
			}
			opts.mode = uint32(mode) & vfs.ModePermMask
		default:
			logger.Debug("ignoring unknown mount option", logger.Option(token))
		}
	}
	return opts, nil
}
