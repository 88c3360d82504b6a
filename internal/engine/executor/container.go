package executor

import (
	"fmt"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"go.trai.ch/hxt/internal/core/domain"
)

// containerArgv wraps an Exec in `docker run`: the project root is bind-mounted,
// the process runs as the host user so written files keep their owner, and only
// the named host variables that are set are forwarded.
func containerArgv(c *domain.Container, a domain.Exec, host Host) []string {
	mount := c.MountPoint
	if mount == "" {
		mount = "/src"
	}
	workdir := c.Workdir
	if workdir == "" {
		workdir = mount
		if a.Dir != "" {
			if rel, err := filepath.Rel(c.Root, a.Dir); err == nil && !strings.HasPrefix(rel, "..") {
				workdir = path.Join(mount, filepath.ToSlash(rel))
			}
		}
	}

	argv := []string{"docker", "run", "--rm"}
	if a.Console {
		argv = append(argv, "-it")
	}
	argv = append(argv,
		"-u", fmt.Sprintf("%d:%d", host.UID, host.GID),
		"-v", c.Root+":"+mount,
		"-w", workdir,
	)

	for _, name := range c.PassEnv {
		if _, ok := host.LookupEnv(name); ok {
			argv = append(argv, "-e", name)
		}
	}
	keys := make([]string, 0, len(a.Env))
	for k := range a.Env {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		argv = append(argv, "-e", k+"="+a.Env[k])
	}

	argv = append(argv, c.Image)
	return append(argv, a.Argv...)
}
