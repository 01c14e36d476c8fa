/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic.
	Call flag.Parse() from main, never from a package init, so that test binaries
	keep their own flags.
*/

package flag

import (
	"flag"
)

const (
	APIServer = "api_server"
)

var (
	IsDevelopment *bool
	ServiceName   *string
	SettingPath   *string
)

func init() {
	IsDevelopment = flag.Bool("dev", true, "set to true if the current run is for development. default value is true")
	ServiceName = flag.String("service", APIServer, "name reported to logs, traces and metrics")
	SettingPath = flag.String("setting", "app_setting/server_app_setting.yaml", "path to the server app setting yaml")
}
