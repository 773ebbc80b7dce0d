package provider

import (
	"fmt"
	"strings"
)

// Repository identifies a tracked project. It is loaded once at startup and never mutated.
type Repository struct {
	Owner string
	Name  string
}

// String renders the repository as "owner/name".
func (r Repository) String() string {
	return r.Owner + "/" + r.Name
}

// ParseRepository parses an "owner/name" identifier.
func ParseRepository(s string) (Repository, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return Repository{}, fmt.Errorf("%w: %q (expected owner/name)", ErrInvalidRepository, s)
	}
	return Repository{Owner: parts[0], Name: parts[1]}, nil
}

// ParseRepositories parses every identifier, failing on the first malformed one.
func ParseRepositories(ids []string) ([]Repository, error) {
	repos := make([]Repository, 0, len(ids))
	for _, id := range ids {
		repo, err := ParseRepository(id)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, nil
}
