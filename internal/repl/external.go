package repl

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
	"github.com/INTARYNX/sqlwayfarer-sub001/internal/session"
)

// clientCandidates lists the external clients tried per driver, in
// preference order.
func clientCandidates(driver string) []string {
	if driver == session.DriverPostgres {
		return []string{"pgcli", "psql"}
	}
	return []string{"sqlcmd"}
}

// buildClientArgs composes the argument list for an external client.
// The password is never placed in the argument list for postgres clients;
// it travels via PGPASSWORD. sqlcmd has no environment equivalent, so an
// integrated-security flag is used when no credentials are present.
func buildClientArgs(client string, p credstore.Profile, password string) []string {
	switch client {
	case "pgcli", "psql":
		args := []string{"-h", p.Server}
		if p.Port != "" {
			args = append(args, "-p", p.Port)
		}
		if p.Username != "" {
			args = append(args, "-U", p.Username)
		}
		db := p.Database
		if db == "" {
			db = "postgres"
		}
		return append(args, "-d", db)
	default: // sqlcmd
		server := p.Server
		if p.Port != "" {
			server = p.Server + "," + p.Port
		}
		args := []string{"-S", server}
		if p.Database != "" {
			args = append(args, "-d", p.Database)
		}
		if p.Username != "" && password != "" {
			args = append(args, "-U", p.Username, "-P", password)
		} else {
			args = append(args, "-E")
		}
		return args
	}
}

// LaunchExternal looks for an installed SQL client matching the
// profile's driver and hands the terminal to it. It reports false when
// no client binary is found, so the caller can fall back to the native
// query loop.
func LaunchExternal(p credstore.Profile, password string) (bool, error) {
	for _, client := range clientCandidates(p.Driver) {
		path, err := exec.LookPath(client)
		if err != nil {
			continue
		}
		fmt.Printf("Launching %s...\n", client)

		cmd := exec.Command(path, buildClientArgs(client, p, password)...)
		cmd.Env = os.Environ()
		if client == "pgcli" || client == "psql" {
			cmd.Env = append(cmd.Env, fmt.Sprintf("PGPASSWORD=%s", password))
		}
		cmd.Stdin, cmd.Stdout, cmd.Stderr = os.Stdin, os.Stdout, os.Stderr
		return true, startAndWait(cmd)
	}
	return false, nil
}
