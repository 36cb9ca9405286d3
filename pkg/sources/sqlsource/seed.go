package sqlsource

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-formflow/pkg/sources"
)

// Address is one stored address suggestion.
type Address struct {
	ID          string `yaml:"id"`
	Text        string `yaml:"text"`
	Description string `yaml:"description"`
	City        string `yaml:"city"`
	Province    string `yaml:"province"`
	PostalCode  string `yaml:"postalCode"`
}

func (a Address) item() sources.AddressItem {
	return sources.AddressItem{
		ID:          a.ID,
		Text:        a.Text,
		Description: a.Description,
		Raw: map[string]any{
			"City":       a.City,
			"Province":   a.Province,
			"PostalCode": a.PostalCode,
		},
	}
}

// Seed is the YAML document accepted by LoadSeed.
//
//	forms:
//	  "12":
//	    - {"143150": Ontario, "143151": Toronto}
//	repositories:
//	  "7": [...]
//	users:
//	  - {name: Alex Johnson, email: alex@example.com}
//	addresses:
//	  - {id: a1, text: 1 King St W, city: Toronto}
//	submissions:
//	  - {workflowId: wf, processId: p1, activityId: act, raisedBy: a@b.co, fields: {...}}
type Seed struct {
	Forms        map[string][]map[string]string `yaml:"forms"`
	Repositories map[string][]map[string]string `yaml:"repositories"`
	Users        []SeedUser                     `yaml:"users"`
	Addresses    []Address                      `yaml:"addresses"`
	Submissions  []SeedSubmission               `yaml:"submissions"`
}

// SeedUser is one predefined user.
type SeedUser struct {
	Name     string `yaml:"name"`
	Email    string `yaml:"email"`
	UserType string `yaml:"userType"`
}

// SeedSubmission is one saved submission.
type SeedSubmission struct {
	WorkflowID    string         `yaml:"workflowId"`
	ProcessID     string         `yaml:"processId"`
	TransactionID string         `yaml:"transactionId"`
	ActivityID    string         `yaml:"activityId"`
	RaisedBy      string         `yaml:"raisedBy"`
	Fields        map[string]any `yaml:"fields"`
}

// LoadSeedFile reads a YAML seed from path and stores it.
func (s *Store) LoadSeedFile(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("sqlsource: open seed: %w", err)
	}
	defer f.Close()
	return s.LoadSeed(ctx, f)
}

// LoadSeed decodes a YAML seed from r and stores every entry.
func (s *Store) LoadSeed(ctx context.Context, r io.Reader) error {
	var seed Seed
	if err := yaml.NewDecoder(r).Decode(&seed); err != nil && err != io.EOF {
		return fmt.Errorf("sqlsource: decode seed: %w", err)
	}
	return s.Apply(ctx, seed)
}

// Apply stores every entry of seed.
func (s *Store) Apply(ctx context.Context, seed Seed) error {
	rows := 0
	for _, group := range []struct {
		kind   string
		owners map[string][]map[string]string
	}{
		{KindForm, seed.Forms},
		{KindRepository, seed.Repositories},
	} {
		for owner, list := range group.owners {
			for _, cells := range list {
				if _, err := s.putRecord(ctx, group.kind, owner, cells); err != nil {
					return err
				}
				rows++
			}
		}
	}
	for _, u := range seed.Users {
		if err := s.PutUser(ctx, u.Name, u.Email, u.UserType); err != nil {
			return err
		}
	}
	for _, a := range seed.Addresses {
		if err := s.PutAddress(ctx, a); err != nil {
			return err
		}
	}
	for _, sub := range seed.Submissions {
		ref := sources.SubmissionRef{
			WorkflowID:    sub.WorkflowID,
			ProcessID:     sub.ProcessID,
			TransactionID: sub.TransactionID,
		}
		if err := s.PutSubmission(ctx, ref, sources.Submission{
			ActivityID: sub.ActivityID,
			RaisedBy:   sub.RaisedBy,
			Fields:     sub.Fields,
		}); err != nil {
			return err
		}
	}
	s.logger.Info("sqlsource: seed applied",
		zap.Int("rows", rows),
		zap.Int("users", len(seed.Users)),
		zap.Int("addresses", len(seed.Addresses)),
		zap.Int("submissions", len(seed.Submissions)),
	)
	return nil
}
