package testsupport

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/goliatone/go-formflow/pkg/schema"
)

// Well-known field ids from the application fixture.
const (
	FieldApplicationType schema.FieldID = "143091"
	FieldApplicationName schema.FieldID = "143093"
	FieldFullName        schema.FieldID = "143106"
	FieldEmail           schema.FieldID = "143112"
	FieldPhone           schema.FieldID = "143111"
	FieldBirthDate       schema.FieldID = "143109"
	FieldRole            schema.FieldID = "143190"
	FieldHasCoApplicant  schema.FieldID = "143097"
	FieldCoFirstName     schema.FieldID = "143098"
	FieldCoEmail         schema.FieldID = "143101"
	FieldRelationship    schema.FieldID = "143099"
	FieldResidenceType   schema.FieldID = "143135"
	FieldMonthlyRent     schema.FieldID = "143136"
	FieldProvince        schema.FieldID = "143150"
	FieldCity            schema.FieldID = "143151"
	FieldBranch          schema.FieldID = "143152"
	FieldAdvisor         schema.FieldID = "143153"
	FieldProduct         schema.FieldID = "143154"
	FieldPriorAddress    schema.FieldID = "143137"
	FieldRowAddress      schema.FieldID = "143138"
	FieldRowCity         schema.FieldID = "143139"
	FieldRowPostal       schema.FieldID = "143142"
	FieldRowStart        schema.FieldID = "143143"
	FieldRowEnd          schema.FieldID = "143144"
	FieldAddress         schema.FieldID = "143160"
	FieldAddressCity     schema.FieldID = "143161"
	FieldAddressProvince schema.FieldID = "143162"
	FieldAddressPostal   schema.FieldID = "143163"
	FieldAddressUnit     schema.FieldID = "143164"
	FieldReference       schema.FieldID = "143170"
	FieldSubmittedOn     schema.FieldID = "143171"
	FieldInternalScore   schema.FieldID = "143172"
	FieldDivider         schema.FieldID = "143180"
	FieldTerms           schema.FieldID = "143181"
	FieldConsent         schema.FieldID = "143348"
)

// FixturePath resolves name inside the shared testdata directory.
func FixturePath(name string) string {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return filepath.Join("testdata", name)
	}
	return filepath.Join(filepath.Dir(file), "testdata", name)
}

// LoadDocument reads a schema fixture. Testing helpers fail the test on error
// to keep table tests concise.
func LoadDocument(t testing.TB, name string) schema.Document {
	t.Helper()

	doc, err := LoadDocumentFromPath(FixturePath(name))
	if err != nil {
		t.Fatalf("load document: %v", err)
	}
	return doc
}

// LoadDocumentFromPath returns a Document without requiring testing.T, allowing
// callers to wire fixtures in setup functions.
func LoadDocumentFromPath(path string) (schema.Document, error) {
	if path == "" {
		return schema.Document{}, errors.New("testsupport: document path is required")
	}
	doc, err := schema.LoadFile(path)
	if err != nil {
		return schema.Document{}, fmt.Errorf("testsupport: load document: %w", err)
	}
	return doc, nil
}

// ApplicationDocument returns the multi-panel application fixture.
func ApplicationDocument(t testing.TB) schema.Document {
	t.Helper()
	return LoadDocument(t, "application.json")
}

// ApplicationIndex returns the flattened application fixture.
func ApplicationIndex(t testing.TB) *schema.Index {
	t.Helper()
	return schema.Flatten(ApplicationDocument(t))
}

// MustReadFixture returns the raw bytes of a testdata file.
func MustReadFixture(t testing.TB, name string) []byte {
	t.Helper()
	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return data
}
