package insight

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"

	"github.com/firefly-engineering/repolens/internal/report"
)

var composeFiles = []string{"docker-compose.yml", "docker-compose.yaml", "compose.yml", "compose.yaml"}

// databaseImages maps an image name fragment to a database name.
var databaseImages = []struct {
	fragment string
	name     string
}{
	{"postgres", "PostgreSQL"},
	{"postgis", "PostgreSQL"},
	{"mysql", "MySQL"},
	{"mariadb", "MariaDB"},
	{"mongo", "MongoDB"},
	{"redis", "Redis"},
	{"elasticsearch", "Elasticsearch"},
	{"opensearch", "OpenSearch"},
	{"cassandra", "Cassandra"},
	{"couchdb", "CouchDB"},
	{"neo4j", "Neo4j"},
	{"clickhouse", "ClickHouse"},
}

// dockerInstructions yields instruction keyword and arguments, joining
// backslash continuations and dropping comments.
func dockerInstructions(content []byte, fn func(keyword, args string)) {
	sc := bufio.NewScanner(bytes.NewReader(content))
	var cur strings.Builder
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if cur.Len() == 0 && (line == "" || strings.HasPrefix(line, "#")) {
			continue
		}
		if strings.HasSuffix(line, `\`) {
			cur.WriteString(strings.TrimSuffix(line, `\`))
			cur.WriteByte(' ')
			continue
		}
		cur.WriteString(line)
		keyword, args, _ := strings.Cut(strings.TrimSpace(cur.String()), " ")
		fn(strings.ToUpper(keyword), strings.TrimSpace(args))
		cur.Reset()
	}
}

// commandArgs parses exec form (JSON array) or shell form arguments.
func commandArgs(args string) []string {
	if strings.HasPrefix(args, "[") {
		var argv []string
		if err := json.Unmarshal([]byte(args), &argv); err == nil {
			return argv
		}
	}
	argv, err := shellquote.Split(args)
	if err != nil {
		return strings.Fields(args)
	}
	return argv
}

func parseDockerfile(rel string, content []byte) *report.Docker {
	d := &report.Docker{Path: rel}
	var entrypoint, cmd []string
	dockerInstructions(content, func(keyword, args string) {
		switch keyword {
		case "FROM":
			// the last stage is the image that runs
			fields := strings.Fields(args)
			for _, f := range fields {
				if !strings.HasPrefix(f, "--") {
					d.BaseImage = f
					break
				}
			}
		case "EXPOSE":
			for _, p := range strings.Fields(args) {
				d.Ports = appendUnique(d.Ports, p)
			}
		case "ENV":
			for _, name := range envInstructionNames(args) {
				d.Env = appendUnique(d.Env, name)
			}
		case "WORKDIR":
			d.Workdir = args
		case "ENTRYPOINT":
			entrypoint = commandArgs(args)
		case "CMD":
			cmd = commandArgs(args)
		}
	})
	d.Cmd = append(entrypoint, cmd...)
	return d
}

// envInstructionNames handles both "ENV KEY=value ..." and "ENV KEY value".
func envInstructionNames(args string) []string {
	fields, err := shellquote.Split(args)
	if err != nil {
		fields = strings.Fields(args)
	}
	if len(fields) == 0 {
		return nil
	}
	if !strings.Contains(fields[0], "=") {
		return fields[:1]
	}
	var names []string
	for _, f := range fields {
		if name, _, ok := strings.Cut(f, "="); ok && name != "" {
			names = append(names, name)
		}
	}
	return names
}

type composeDoc struct {
	Services map[string]struct {
		Image       string `yaml:"image"`
		Ports       []any  `yaml:"ports"`
		Environment any    `yaml:"environment"`
	} `yaml:"services"`
}

func parseCompose(rel string, content []byte) *report.Compose {
	c := &report.Compose{Path: rel}
	var doc composeDoc
	if err := yaml.Unmarshal(content, &doc); err != nil {
		return c
	}

	c.Services = slices.Sorted(maps.Keys(doc.Services))
	for _, name := range c.Services {
		svc := doc.Services[name]
		for _, p := range svc.Ports {
			c.Ports = appendUnique(c.Ports, composePort(p))
		}
		for _, e := range composeEnvNames(svc.Environment) {
			c.Env = appendUnique(c.Env, e)
		}
		if db := databaseFor(svc.Image); db != "" {
			c.Databases = appendUnique(c.Databases, db)
		}
	}
	slices.Sort(c.Env)
	slices.Sort(c.Databases)
	return c
}

func composePort(p any) string {
	if m, ok := p.(map[string]any); ok {
		if pub, ok := m["published"]; ok {
			return fmt.Sprintf("%v:%v", pub, m["target"])
		}
		return fmt.Sprint(m["target"])
	}
	return fmt.Sprint(p)
}

func composeEnvNames(env any) []string {
	switch t := env.(type) {
	case map[string]any:
		return slices.Sorted(maps.Keys(t))
	case []any:
		var names []string
		for _, e := range t {
			name, _, _ := strings.Cut(fmt.Sprint(e), "=")
			names = append(names, name)
		}
		return names
	}
	return nil
}

func databaseFor(image string) string {
	name := image
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name, _, _ = strings.Cut(name, ":")
	for _, db := range databaseImages {
		if strings.Contains(name, db.fragment) {
			return db.name
		}
	}
	return ""
}

func appendUnique(list []string, s string) []string {
	if s == "" || slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
