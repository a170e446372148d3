package common

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// ContainerShortID returns the first twelve characters of a container ID
// to match the shortened IDs printed by docker and podman.
func ContainerShortID(containerID string) string {
	if len(containerID) < 12 {
		return containerID
	}
	return containerID[0:12]
}

// QuoteArgs adds quotes around any argument that needs them for display.
// Used only when logging command lines; execution always uses argv vectors.
func QuoteArgs(args []string) []string {
	quotedArgs := make([]string, 0, len(args))
	for _, arg := range args {
		argQuoted := strconv.Quote(arg)
		argQuotedTrimmed := strings.Trim(argQuoted, "\"")
		if arg != argQuotedTrimmed || strings.Contains(arg, " ") {
			arg = argQuoted
		}
		quotedArgs = append(quotedArgs, arg)
	}
	return quotedArgs
}

// HostArch reports the machine architecture of the host and whether it is
// one of the supported values.
func HostArch(supported ...string) (bool, string) {
	u := unix.Utsname{}
	if err := unix.Uname(&u); err != nil {
		return false, ""
	}

	arch := string(bytes.Trim(u.Machine[:], "\x00"))
	for _, s := range supported {
		if s == arch {
			return true, arch
		}
	}
	return false, arch
}
