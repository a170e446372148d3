package config

// Mount binds a host path into the container. The provisioner always maps
// paths to the identical location inside the container.
type Mount struct {
	HostPath      string
	ContainerPath string
}

// ContainerStartConfig describes the long-lived container to create.
// Mounts are ordered: the working-directory mount always comes first.
type ContainerStartConfig struct {
	Name    string
	Image   string
	WorkDir string
	Mounts  []Mount
	Command []string
}
