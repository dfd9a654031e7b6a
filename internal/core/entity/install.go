package entity

// Installer configures a freshly built entity: tags, values and
// capabilities.
type Installer interface {
	Install(e *Entity) error
}

type InstallerFunc func(e *Entity) error

func (f InstallerFunc) Install(e *Entity) error {
	return f(e)
}

// Install runs the installers once. Later calls report false and do nothing.
// The entity counts as installed even when an installer fails.
func (e *Entity) Install(installers ...Installer) (bool, error) {
	if e.installed {
		return false, nil
	}
	e.installed = true

	for _, in := range installers {
		if in == nil {
			continue
		}
		if err := in.Install(e); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (e *Entity) IsInstalled() bool {
	return e.installed
}

// Factory produces installed entities.
type Factory interface {
	Create() (*Entity, error)
}

type FactoryFunc func() (*Entity, error)

func (f FactoryFunc) Create() (*Entity, error) {
	return f()
}
