package executor

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"strings"

	"github.com/docker/cli/cli/config/configfile"
	"github.com/docker/docker/api/types/registry"

	"github.com/containerbuild/testenv/pkg/log"
)

// Config files consulted for registry credentials, in order. Both docker
// and podman locations are checked since either engine may have logged in.
var registryConfigPaths = []string{
	"$HOME/.docker/config.json",
	"$XDG_RUNTIME_DIR/containers/auth.json",
}

const defaultRegistry = "docker.io"

// registryFor extracts the registry host from an image reference.
// References without an explicit host ("rockylinux:8") belong to the
// default registry.
func registryFor(ref string) string {
	first := strings.SplitN(ref, "/", 2)[0]
	if strings.ContainsAny(first, ".:") && first != ref {
		return first
	}
	return defaultRegistry
}

// readRegistryAuth loads credentials from engine config files and returns
// them keyed by registry host, already encoded for the docker API.
func readRegistryAuth() (map[string]string, error) {
	authConfigs := map[string]string{}
	for _, path := range registryConfigPaths {
		expanded := os.ExpandEnv(path)

		configBytes, err := os.ReadFile(expanded)
		if err != nil {
			log.Trace("no registry config at %s: %s", expanded, err)
			continue
		}

		var engineConfig configfile.ConfigFile
		if err := json.Unmarshal(configBytes, &engineConfig); err != nil {
			log.Warn("failed to parse %s: %s", expanded, err)
			continue
		}

		for server, authConfig := range engineConfig.AuthConfigs {
			serverConfig := registry.AuthConfig{
				Username:      authConfig.Username,
				Password:      authConfig.Password,
				ServerAddress: server,
			}
			if authConfig.Auth != "" {
				authPlain, err := base64.StdEncoding.DecodeString(authConfig.Auth)
				if err != nil {
					return nil, err
				}
				username, password, found := strings.Cut(string(authPlain), ":")
				if !found {
					continue
				}
				serverConfig.Username = username
				serverConfig.Password = password
			}

			encoded, err := registry.EncodeAuthConfig(serverConfig)
			if err != nil {
				return nil, err
			}
			authConfigs[hostFromServer(server)] = encoded
			log.Debug("read credentials for %s from %s", server, expanded)
		}
	}
	return authConfigs, nil
}

// hostFromServer normalizes config-file server keys, which may be bare
// hosts or URLs like https://index.docker.io/v1/.
func hostFromServer(server string) string {
	host := server
	if idx := strings.Index(host, "://"); idx >= 0 {
		host = host[idx+3:]
	}
	host = strings.SplitN(host, "/", 2)[0]
	if strings.HasSuffix(host, "docker.io") {
		return defaultRegistry
	}
	return host
}
