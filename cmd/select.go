package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktr0731/go-fuzzyfinder"

	"github.com/INTARYNX/sqlwayfarer-sub001/internal/credstore"
)

// selectProfile resolves which saved profile a command targets: an exact
// or partial name from args, the last-connected profile, or an
// interactive fuzzy pick.
func selectProfile(store *credstore.Store, args []string, last bool) (credstore.Profile, error) {
	profiles := store.GetSavedConnections()
	if len(profiles) == 0 {
		return credstore.Profile{}, fmt.Errorf("no saved connections; add one with 'sqlwayfarer save'")
	}

	if len(args) > 0 {
		return findByName(profiles, args[0])
	}
	if last {
		return loadLastConnected(profiles)
	}
	return pickWithFuzzyFinder(profiles)
}

func findByName(profiles []credstore.Profile, name string) (credstore.Profile, error) {
	for _, p := range profiles {
		if p.Name == name {
			return p, nil
		}
	}

	var matches []credstore.Profile
	for _, p := range profiles {
		if strings.Contains(p.Name, name) {
			matches = append(matches, p)
		}
	}

	if len(matches) == 1 {
		return matches[0], nil
	}
	if len(matches) > 1 {
		return pickWithFuzzyFinder(matches)
	}

	return credstore.Profile{}, fmt.Errorf("no connection matching '%s'", name)
}

func pickWithFuzzyFinder(profiles []credstore.Profile) (credstore.Profile, error) {
	idx, err := fuzzyfinder.Find(
		profiles,
		func(i int) string {
			p := profiles[i]
			server := p.Server
			if p.UseConnectionString {
				server = "(connection string)"
			}
			return fmt.Sprintf("%-24s | %-30s | %s", p.Name, server, p.Database)
		},
		fuzzyfinder.WithHeader("Select Connection"),
	)
	if err != nil {
		return credstore.Profile{}, err
	}
	return profiles[idx], nil
}

func lastConnectedPath() string {
	return filepath.Join(cfg.Store.Dir, "last_connected")
}

func saveLastConnected(name string) {
	_ = os.MkdirAll(cfg.Store.Dir, 0700)
	_ = os.WriteFile(lastConnectedPath(), []byte(name), 0600)
}

func loadLastConnected(profiles []credstore.Profile) (credstore.Profile, error) {
	data, err := os.ReadFile(lastConnectedPath())
	if err != nil {
		return credstore.Profile{}, fmt.Errorf("no connection history found")
	}

	lastName := strings.TrimSpace(string(data))
	for _, p := range profiles {
		if p.Name == lastName {
			return p, nil
		}
	}
	return credstore.Profile{}, fmt.Errorf("last used connection '%s' no longer exists", lastName)
}
