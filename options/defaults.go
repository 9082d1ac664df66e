package options

import "os"

// TeamCityEnvVar is set by TeamCity build agents.
const TeamCityEnvVar = "TEAMCITY_PROJECT_NAME"

// DefaultsProvider supplies defaults that depend on the environment the
// console runs in.
type DefaultsProvider interface {
	TeamCity() bool
}

// EnvDefaults reads defaults from the process environment.
type EnvDefaults struct{}

func (EnvDefaults) TeamCity() bool {
	return os.Getenv(TeamCityEnvVar) != ""
}

// StaticDefaults returns fixed defaults.
type StaticDefaults struct {
	RunningUnderTeamCity bool
}

func (d StaticDefaults) TeamCity() bool {
	return d.RunningUnderTeamCity
}
