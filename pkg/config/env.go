package config

import "os"

const (
	envEngine        = "ENGINE"
	envOS            = "OS"
	envOSVersion     = "OS_VERSION"
	envPythonVersion = "PYTHON_VERSION"
	envAction        = "ACTION"
	envExtraMount    = "EXTRA_MOUNT"
	envPyPIIndex     = "PYPI_INDEX"
	envPackage       = "PACKAGE"
)

// ReadEnvVar safely reads a variable from the environment.
// If the variable does not exist, an empty string is returned.
func ReadEnvVar(env string) string {
	if e, ok := os.LookupEnv(env); ok {
		return e
	}
	return ""
}

// ReadEnvVarWithDefault safely reads a variable from the environment.
// If the variable does not exist, the provided default is returned.
func ReadEnvVarWithDefault(env string, def string) string {
	if e, ok := os.LookupEnv(env); ok {
		return e
	}
	return def
}
