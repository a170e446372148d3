package provision

import "github.com/containerbuild/testenv/pkg/config"

// mounts builds the ordered bind list for container creation: the working
// directory first, then one entry per EXTRA_MOUNT path, each mapping a
// host path to the identical container path. No deduplication happens;
// callers get exactly what they asked for.
func (p *Provisioner) mounts() []config.Mount {
	mounts := make([]config.Mount, 0, len(p.cfg.ExtraMounts)+1)
	mounts = append(mounts, config.Mount{
		HostPath:      p.cfg.WorkDir,
		ContainerPath: p.cfg.WorkDir,
	})
	for _, path := range p.cfg.ExtraMounts {
		mounts = append(mounts, config.Mount{
			HostPath:      path,
			ContainerPath: path,
		})
	}
	return mounts
}
