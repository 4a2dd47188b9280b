package main

import (
	"contact-lab/domain"
	"contact-lab/protocol/memory"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// Roster describes the server-stored contact lists the simulated providers
// start with.
type Roster struct {
	Accounts []AccountRoster `yaml:"accounts"`
}

type AccountRoster struct {
	ID       string          `yaml:"id"`
	Groups   [][]string      `yaml:"groups"`
	Contacts []ContactRoster `yaml:"contacts"`
}

type ContactRoster struct {
	Address string   `yaml:"address"`
	Name    string   `yaml:"name"`
	Status  string   `yaml:"status"`
	Group   []string `yaml:"group"`
}

func loadRoster(path string) (Roster, error) {
	var roster Roster
	data, err := os.ReadFile(path)
	if err != nil {
		return roster, fmt.Errorf("unable to read roster: %w", err)
	}
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return roster, fmt.Errorf("unable to parse roster %s: %w", path, err)
	}
	if dup := lo.FindDuplicatesBy(roster.Accounts, func(a AccountRoster) string { return a.ID }); len(dup) > 0 {
		return roster, fmt.Errorf("account %s declared twice in %s", dup[0].ID, path)
	}
	return roster, nil
}

// providers builds one in-memory provider per account, seeded with its roster.
func (r Roster) providers(log *slog.Logger) ([]*memory.Provider, error) {
	res := make([]*memory.Provider, 0, len(r.Accounts))
	for _, account := range r.Accounts {
		p := memory.NewProvider(log, account.ID)
		for _, path := range account.Groups {
			p.SeedGroup(path)
		}
		for _, c := range account.Contacts {
			status := domain.Offline
			if c.Status != "" {
				var ok bool
				if status, ok = domain.ParsePresence(c.Status); !ok {
					return nil, fmt.Errorf("account %s: unknown status %q for %s", account.ID, c.Status, c.Address)
				}
			}
			p.Seed(c.Group, c.Address, c.Name, status)
		}
		res = append(res, p)
	}
	return res, nil
}
