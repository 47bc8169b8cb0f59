package report

import (
	"slices"

	"github.com/firefly-engineering/repolens/internal/catalog"
)

// Role is the part a file plays in the repository.
type Role string

const (
	RoleSource   Role = "source"
	RoleManifest Role = "manifest"
	RoleIgnored  Role = "ignored"
	RoleUnknown  Role = "unknown"
)

// Ecosystem names a package registry.
type Ecosystem string

const (
	EcosystemPyPI      Ecosystem = "pypi"
	EcosystemNPM       Ecosystem = "npm"
	EcosystemGo        Ecosystem = "go"
	EcosystemCrates    Ecosystem = "crates.io"
	EcosystemRubyGems  Ecosystem = "rubygems"
	EcosystemPackagist Ecosystem = "packagist"
	EcosystemPub       Ecosystem = "pub"
	EcosystemMaven     Ecosystem = "maven"
	EcosystemNuGet     Ecosystem = "nuget"
)

// Dependency scopes. Scope is informational only.
const (
	ScopeDev      = "dev"
	ScopePeer     = "peer"
	ScopeOptional = "optional"
	ScopeBuild    = "build"
	ScopeIndirect = "indirect"
)

// FileEntry is one path observed during traversal.
type FileEntry struct {
	Path     string `json:"path" yaml:"path"`
	Size     int64  `json:"size" yaml:"size"`
	Language string `json:"language,omitempty" yaml:"language,omitempty"`
	Role     Role   `json:"role" yaml:"role"`
}

// Dependency is a package declared by a manifest.
type Dependency struct {
	Name       string    `json:"name" yaml:"name"`
	Constraint string    `json:"constraint,omitempty" yaml:"constraint,omitempty"`
	Ecosystem  Ecosystem `json:"ecosystem" yaml:"ecosystem"`
	Scope      string    `json:"scope,omitempty" yaml:"scope,omitempty"`
	Manifest   string    `json:"manifest" yaml:"manifest"`
}

// FrameworkHit records that a technology was detected and why.
type FrameworkHit struct {
	Name     string `json:"name" yaml:"name"`
	Evidence string `json:"evidence" yaml:"evidence"`
}

// IgnoreRule is a triggered ignore pattern.
type IgnoreRule = catalog.IgnoreRule

// ManifestStatus describes how a manifest file was parsed.
type ManifestStatus struct {
	Path         string    `json:"path" yaml:"path"`
	Format       string    `json:"format" yaml:"format"`
	Ecosystem    Ecosystem `json:"ecosystem" yaml:"ecosystem"`
	Dependencies int       `json:"dependencies" yaml:"dependencies"`
	Partial      bool      `json:"partial" yaml:"partial"`
	Error        string    `json:"error,omitempty" yaml:"error,omitempty"`
}

// Skipped is a path the analyzer could not fully process.
type Skipped struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
}

// Skip reasons.
const (
	ReasonUnreadableFile = "unreadable file"
	ReasonUnreadableDir  = "unreadable directory"
	ReasonSymlink        = "symbolic link not followed"
	ReasonTooLarge       = "manifest too large"
	ReasonIrregular      = "not a regular file"
)

// Insights are derived summaries used to describe a project to a reader.
type Insights struct {
	Project      Project  `json:"project" yaml:"project"`
	MainLanguage string   `json:"main_language,omitempty" yaml:"main_language,omitempty"`
	EntryPoints  []string `json:"entry_points,omitempty" yaml:"entry_points,omitempty"`
	Docker       *Docker  `json:"docker,omitempty" yaml:"docker,omitempty"`
	Compose      *Compose `json:"compose,omitempty" yaml:"compose,omitempty"`
	EnvVars      []string `json:"env_vars,omitempty" yaml:"env_vars,omitempty"`
	CI           []string `json:"ci,omitempty" yaml:"ci,omitempty"`
	Commands     Commands `json:"commands" yaml:"commands"`
	Complexity   int      `json:"complexity" yaml:"complexity"`
	Difficulty   string   `json:"difficulty" yaml:"difficulty"`
	Architecture string   `json:"architecture" yaml:"architecture"`
}

// Project is metadata declared by the primary manifest.
type Project struct {
	Name        string `json:"name,omitempty" yaml:"name,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Version     string `json:"version,omitempty" yaml:"version,omitempty"`
	License     string `json:"license,omitempty" yaml:"license,omitempty"`
	Source      string `json:"source,omitempty" yaml:"source,omitempty"`
}

// Docker summarises the root Dockerfile.
type Docker struct {
	Path      string   `json:"path" yaml:"path"`
	BaseImage string   `json:"base_image,omitempty" yaml:"base_image,omitempty"`
	Ports     []string `json:"ports,omitempty" yaml:"ports,omitempty"`
	Env       []string `json:"env,omitempty" yaml:"env,omitempty"`
	Workdir   string   `json:"workdir,omitempty" yaml:"workdir,omitempty"`
	Cmd       []string `json:"cmd,omitempty" yaml:"cmd,omitempty"`
}

// Compose summarises a root compose file.
type Compose struct {
	Path      string   `json:"path" yaml:"path"`
	Services  []string `json:"services,omitempty" yaml:"services,omitempty"`
	Ports     []string `json:"ports,omitempty" yaml:"ports,omitempty"`
	Env       []string `json:"env,omitempty" yaml:"env,omitempty"`
	Databases []string `json:"databases,omitempty" yaml:"databases,omitempty"`
}

// Commands are the conventional ways to work with the project.
type Commands struct {
	Install string `json:"install,omitempty" yaml:"install,omitempty"`
	Run     string `json:"run,omitempty" yaml:"run,omitempty"`
	Dev     string `json:"dev,omitempty" yaml:"dev,omitempty"`
	Test    string `json:"test,omitempty" yaml:"test,omitempty"`
	Build   string `json:"build,omitempty" yaml:"build,omitempty"`
}

func (i Insights) clone() Insights {
	out := i
	out.EntryPoints = slices.Clone(i.EntryPoints)
	out.EnvVars = slices.Clone(i.EnvVars)
	out.CI = slices.Clone(i.CI)
	if i.Docker != nil {
		d := *i.Docker
		d.Ports = slices.Clone(d.Ports)
		d.Env = slices.Clone(d.Env)
		d.Cmd = slices.Clone(d.Cmd)
		out.Docker = &d
	}
	if i.Compose != nil {
		c := *i.Compose
		c.Services = slices.Clone(c.Services)
		c.Ports = slices.Clone(c.Ports)
		c.Env = slices.Clone(c.Env)
		c.Databases = slices.Clone(c.Databases)
		out.Compose = &c
	}
	return out
}
