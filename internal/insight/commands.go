package insight

import (
	"slices"

	"github.com/firefly-engineering/repolens/internal/manifest"
	"github.com/firefly-engineering/repolens/internal/report"
)

type readFunc func(rel string) ([]byte, bool)

// recipe proposes commands for one toolchain. ok is false when the
// toolchain is not used by the repository.
type recipe struct {
	ecosystem report.Ecosystem
	build     func(r *report.Report, present map[string]bool, read readFunc) (report.Commands, bool)
}

var languageEcosystem = map[string]report.Ecosystem{
	"Python":     report.EcosystemPyPI,
	"JavaScript": report.EcosystemNPM,
	"TypeScript": report.EcosystemNPM,
	"Go":         report.EcosystemGo,
	"Rust":       report.EcosystemCrates,
	"Ruby":       report.EcosystemRubyGems,
	"PHP":        report.EcosystemPackagist,
	"Dart":       report.EcosystemPub,
	"Java":       report.EcosystemMaven,
	"Kotlin":     report.EcosystemMaven,
	"C#":         report.EcosystemNuGet,
}

var recipes = []recipe{
	{report.EcosystemNPM, nodeCommands},
	{report.EcosystemPyPI, pythonCommands},
	{report.EcosystemGo, goCommands},
	{report.EcosystemCrates, cargoCommands},
	{report.EcosystemRubyGems, rubyCommands},
	{report.EcosystemPackagist, phpCommands},
	{report.EcosystemMaven, mavenCommands},
	{report.EcosystemPub, dartCommands},
	{report.EcosystemNuGet, dotnetCommands},
}

// commands merges the proposals of every matching recipe. The main
// language's toolchain is consulted first, so its commands win.
func commands(r *report.Report, present map[string]bool, ins report.Insights, read readFunc) report.Commands {
	ordered := slices.Clone(recipes)
	if eco, ok := languageEcosystem[ins.MainLanguage]; ok {
		slices.SortStableFunc(ordered, func(a, b recipe) int {
			switch {
			case a.ecosystem == eco && b.ecosystem != eco:
				return -1
			case b.ecosystem == eco && a.ecosystem != eco:
				return 1
			}
			return 0
		})
	}

	var out report.Commands
	for _, rc := range ordered {
		c, ok := rc.build(r, present, read)
		if !ok {
			continue
		}
		fill(&out.Install, c.Install)
		fill(&out.Run, c.Run)
		fill(&out.Dev, c.Dev)
		fill(&out.Test, c.Test)
		fill(&out.Build, c.Build)
	}
	if ins.Compose != nil {
		fill(&out.Dev, "docker compose up")
	}
	return out
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}

func nodeCommands(_ *report.Report, present map[string]bool, read readFunc) (report.Commands, bool) {
	content, ok := read("package.json")
	if !ok {
		return report.Commands{}, false
	}
	pm := "npm"
	switch {
	case present["pnpm-lock.yaml"]:
		pm = "pnpm"
	case present["yarn.lock"]:
		pm = "yarn"
	}
	run := func(script string) string {
		if pm == "npm" && script != "start" && script != "test" {
			return "npm run " + script
		}
		return pm + " " + script
	}

	c := report.Commands{Install: pm + " install"}
	scripts := manifest.NPMScripts(content)
	has := func(s string) bool { return slices.Contains(scripts, s) }
	if has("start") {
		c.Run = run("start")
	}
	if has("dev") {
		c.Dev = run("dev")
	} else if has("serve") {
		c.Dev = run("serve")
	}
	if has("test") {
		c.Test = run("test")
	}
	if has("build") {
		c.Build = run("build")
	}
	return c, true
}

func pythonCommands(r *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	var c report.Commands
	switch {
	case present["poetry.lock"]:
		c.Install = "poetry install"
	case present["Pipfile"]:
		c.Install = "pipenv install"
	case present["requirements.txt"]:
		c.Install = "pip install -r requirements.txt"
	case present["pyproject.toml"], present["setup.py"]:
		c.Install = "pip install -e ."
	default:
		return c, false
	}

	switch {
	case present["manage.py"]:
		c.Run = "python manage.py runserver"
		c.Test = "python manage.py test"
	case r.HasFramework("FastAPI"):
		c.Dev = "uvicorn main:app --reload"
	case r.HasFramework("Flask"):
		c.Dev = "flask run --debug"
	case r.HasFramework("Streamlit"):
		c.Run = "streamlit run app.py"
	}
	for _, main := range []string{"main.py", "app.py"} {
		if present[main] {
			fill(&c.Run, "python "+main)
			break
		}
	}
	if r.HasFramework("Pytest") || present["pytest.ini"] || present["conftest.py"] {
		fill(&c.Test, "pytest")
	}
	return c, true
}

func goCommands(r *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	if !present["go.mod"] {
		return report.Commands{}, false
	}
	c := report.Commands{
		Install: "go mod download",
		Test:    "go test ./...",
		Build:   "go build ./...",
	}
	if present["main.go"] {
		c.Run = "go run ."
	}
	return c, true
}

func cargoCommands(_ *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	if !present["Cargo.toml"] {
		return report.Commands{}, false
	}
	return report.Commands{
		Install: "cargo fetch",
		Run:     "cargo run",
		Test:    "cargo test",
		Build:   "cargo build --release",
	}, true
}

func rubyCommands(r *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	if !present["Gemfile"] {
		return report.Commands{}, false
	}
	c := report.Commands{Install: "bundle install"}
	if r.HasFramework("Rails") || present["bin/rails"] {
		c.Run = "bin/rails server"
		c.Test = "bin/rails test"
	} else if present["Rakefile"] {
		c.Test = "bundle exec rake test"
	}
	return c, true
}

func phpCommands(r *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	if !present["composer.json"] {
		return report.Commands{}, false
	}
	c := report.Commands{Install: "composer install"}
	if present["artisan"] || r.HasFramework("Laravel") {
		c.Run = "php artisan serve"
		c.Test = "php artisan test"
	}
	return c, true
}

func mavenCommands(r *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	switch {
	case present["pom.xml"]:
		c := report.Commands{Install: "mvn install", Test: "mvn test", Build: "mvn package"}
		if r.HasFramework("Spring Boot") {
			c.Run = "mvn spring-boot:run"
		}
		return c, true
	case present["build.gradle"], present["build.gradle.kts"]:
		c := report.Commands{Install: "./gradlew dependencies", Test: "./gradlew test", Build: "./gradlew build"}
		if r.HasFramework("Spring Boot") {
			c.Run = "./gradlew bootRun"
		}
		return c, true
	}
	return report.Commands{}, false
}

func dartCommands(r *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	if !present["pubspec.yaml"] {
		return report.Commands{}, false
	}
	if r.HasFramework("Flutter") {
		return report.Commands{
			Install: "flutter pub get",
			Run:     "flutter run",
			Test:    "flutter test",
			Build:   "flutter build",
		}, true
	}
	return report.Commands{Install: "dart pub get", Run: "dart run", Test: "dart test"}, true
}

func dotnetCommands(r *report.Report, present map[string]bool, _ readFunc) (report.Commands, bool) {
	found := false
	for _, f := range r.Manifests() {
		if f.Ecosystem == report.EcosystemNuGet {
			found = true
			break
		}
	}
	if !found {
		return report.Commands{}, false
	}
	return report.Commands{
		Install: "dotnet restore",
		Run:     "dotnet run",
		Test:    "dotnet test",
		Build:   "dotnet build",
	}, true
}
