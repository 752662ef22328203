package fieldcrypt_test

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/antchfx/xmlquery"
	"github.com/zoobzio/sealant"
	"github.com/zoobzio/sealant/fieldcrypt"
)

func testEngine(t *testing.T) *fieldcrypt.Engine {
	t.Helper()
	reg, err := sealant.NewRegistry([]sealant.Credential{
		{Name: "test", Algorithm: sealant.AES, Key: make([]byte, 32), IVSize: 16},
		{Name: "other", Algorithm: sealant.TripleDES, Key: make([]byte, 24), IVSize: 8},
	}, "test")
	if err != nil {
		t.Fatalf("NewRegistry() error: %v", err)
	}
	crypto, err := sealant.New(reg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	engine, err := fieldcrypt.New(crypto)
	if err != nil {
		t.Fatalf("fieldcrypt.New() error: %v", err)
	}
	return engine
}

func xmlText(t *testing.T, document, path string) string {
	t.Helper()
	doc, err := xmlquery.Parse(strings.NewReader(document))
	if err != nil {
		t.Fatalf("parsing %q: %v", document, err)
	}
	node, err := xmlquery.Query(doc, path)
	if err != nil || node == nil {
		t.Fatalf("no match for %q in %q", path, document)
	}
	return node.InnerText()
}

// Scenario: one element encrypted, its sibling untouched, and the same
// path decrypts back to the original.
func TestXML_EncryptDecryptRoundTrip(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()
	doc := "<r><a>secret</a><b>visible</b></r>"

	encrypted, err := engine.EncryptXML(ctx, doc, []string{"/r/a"}, "test")
	if err != nil {
		t.Fatalf("EncryptXML() error: %v", err)
	}

	if got := xmlText(t, encrypted, "/r/b"); got != "visible" {
		t.Errorf("untouched sibling = %q, want %q", got, "visible")
	}
	cipherText := xmlText(t, encrypted, "/r/a")
	if cipherText == "secret" {
		t.Error("matched element was not rewritten")
	}
	raw, err := base64.StdEncoding.DecodeString(cipherText)
	if err != nil {
		t.Fatalf("encrypted field is not Base64: %v", err)
	}
	if !sealant.IsEnveloped(raw) {
		t.Error("encrypted field does not decode to an envelope")
	}

	decrypted, err := engine.DecryptXML(ctx, encrypted, []string{"/r/a"}, "test")
	if err != nil {
		t.Fatalf("DecryptXML() error: %v", err)
	}
	if got := xmlText(t, decrypted, "/r/a"); got != "secret" {
		t.Errorf("decrypted field = %q, want %q", got, "secret")
	}
}

func TestXML_SubtreeCollapsedToText(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()
	doc := "<order><items><item>tea</item><item>milk</item></items><note>gift</note></order>"

	encrypted, err := engine.EncryptXML(ctx, doc, []string{"/order/items"}, "test")
	if err != nil {
		t.Fatalf("EncryptXML() error: %v", err)
	}
	if strings.Contains(encrypted, "<item>") {
		t.Error("element children should be collapsed into the encrypted text")
	}

	decrypted, err := engine.DecryptXML(ctx, encrypted, []string{"/order/items"}, "test")
	if err != nil {
		t.Fatalf("DecryptXML() error: %v", err)
	}
	if got := xmlText(t, decrypted, "/order/items/item[2]"); got != "milk" {
		t.Errorf("restored subtree item = %q, want %q", got, "milk")
	}
	if got := xmlText(t, decrypted, "/order/note"); got != "gift" {
		t.Errorf("untouched element = %q, want %q", got, "gift")
	}
}

func TestXML_NoMatchLeavesDocumentEquivalent(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()
	doc := "<r><a>text</a></r>"

	out, err := engine.EncryptXML(ctx, doc, []string{"/r/missing"}, "test")
	if err != nil {
		t.Fatalf("EncryptXML() error: %v", err)
	}
	want, err := xmlquery.Parse(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("parsing %q: %v", doc, err)
	}
	got, err := xmlquery.Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("output is not well-formed XML: %v", err)
	}
	if got.OutputXML(false) != want.OutputXML(false) {
		t.Errorf("EncryptXML() = %q, want a document equivalent to %q", out, doc)
	}
}

func TestXML_LazyCredentialResolution(t *testing.T) {
	// A bogus credential must not fail when nothing matches.
	engine := testEngine(t)
	ctx := context.Background()

	out, err := engine.EncryptXML(ctx, "<r/>", []string{"/r/missing"}, "no-such-credential")
	if err != nil {
		t.Fatalf("EncryptXML() with no matches error: %v", err)
	}
	if !strings.Contains(out, "r") {
		t.Errorf("unexpected output %q", out)
	}

	// With a match the unresolvable credential surfaces.
	_, err = engine.EncryptXML(ctx, "<r>x</r>", []string{"/r"}, "no-such-credential")
	if !errors.Is(err, sealant.ErrCredentialNotFound) {
		t.Errorf("EncryptXML() error = %v, want ErrCredentialNotFound", err)
	}
}

func TestXML_MultipleMatchesAndPaths(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()
	doc := "<r><a>one</a><a>two</a><b>three</b></r>"

	encrypted, err := engine.EncryptXML(ctx, doc, []string{"//a", "/r/b"}, "test")
	if err != nil {
		t.Fatalf("EncryptXML() error: %v", err)
	}
	decrypted, err := engine.DecryptXML(ctx, encrypted, []string{"//a", "/r/b"}, "test")
	if err != nil {
		t.Fatalf("DecryptXML() error: %v", err)
	}
	for path, want := range map[string]string{
		"/r/a[1]": "one",
		"/r/a[2]": "two",
		"/r/b":    "three",
	} {
		if got := xmlText(t, decrypted, path); got != want {
			t.Errorf("%s = %q, want %q", path, got, want)
		}
	}
}

func TestXML_DecryptSkipsPlaintextFields(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()
	doc := "<r><a>never encrypted</a></r>"

	out, err := engine.DecryptXML(ctx, doc, []string{"/r/a"}, "test")
	if err != nil {
		t.Fatalf("DecryptXML() error: %v", err)
	}
	if got := xmlText(t, out, "/r/a"); got != "never encrypted" {
		t.Errorf("plaintext field = %q, want it untouched", got)
	}
}

func TestXML_EmptyPathList(t *testing.T) {
	engine := testEngine(t)
	_, err := engine.EncryptXML(context.Background(), "<r/>", nil, "test")
	if !errors.Is(err, fieldcrypt.ErrNoPaths) {
		t.Errorf("EncryptXML() error = %v, want ErrNoPaths", err)
	}
	_, err = engine.DecryptXML(context.Background(), "<r/>", []string{}, "test")
	if !errors.Is(err, fieldcrypt.ErrNoPaths) {
		t.Errorf("DecryptXML() error = %v, want ErrNoPaths", err)
	}
}

func TestXML_EmptyPathElement(t *testing.T) {
	engine := testEngine(t)
	// The empty element fails even though the first path matched.
	_, err := engine.EncryptXML(context.Background(), "<r><a>x</a></r>", []string{"/r/a", ""}, "test")
	if !errors.Is(err, fieldcrypt.ErrInvalidPath) {
		t.Fatalf("EncryptXML() error = %v, want ErrInvalidPath", err)
	}
	var pathErr *fieldcrypt.PathError
	if !errors.As(err, &pathErr) {
		t.Fatal("error should be a *PathError")
	}
	if pathErr.Path != "" || pathErr.Index != -1 {
		t.Errorf("PathError = %+v, want empty path and index -1", pathErr)
	}
}

func TestXML_MalformedPath(t *testing.T) {
	engine := testEngine(t)
	_, err := engine.EncryptXML(context.Background(), "<r/>", []string{"///][bad"}, "test")
	if !errors.Is(err, fieldcrypt.ErrInvalidPath) {
		t.Errorf("EncryptXML() error = %v, want ErrInvalidPath", err)
	}
}

func TestXML_Canceled(t *testing.T) {
	engine := testEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := engine.EncryptXML(ctx, "<r><a>x</a></r>", []string{"/r/a"}, "test")
	if !errors.Is(err, fieldcrypt.ErrCanceled) {
		t.Errorf("EncryptXML() error = %v, want ErrCanceled", err)
	}
}

func TestXML_WrongCredentialFailsDecrypt(t *testing.T) {
	engine := testEngine(t)
	ctx := context.Background()

	encrypted, err := engine.EncryptXML(ctx, "<r><a>secret</a></r>", []string{"/r/a"}, "test")
	if err != nil {
		t.Fatalf("EncryptXML() error: %v", err)
	}
	// The envelope IV is 16 bytes; the tripledes credential expects 8.
	_, err = engine.DecryptXML(ctx, encrypted, []string{"/r/a"}, "other")
	if !errors.Is(err, sealant.ErrCipher) {
		t.Errorf("DecryptXML() error = %v, want ErrCipher", err)
	}
	var pathErr *fieldcrypt.PathError
	if !errors.As(err, &pathErr) {
		t.Fatal("error should be a *PathError")
	}
	if pathErr.Path != "/r/a" || pathErr.Index != 0 {
		t.Errorf("PathError = %+v, want path /r/a match 0", pathErr)
	}
}
