package fieldcrypt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
)

// EncryptXML parses document, evaluates each XPath expression in order
// and replaces every matched node's content with its encryption under
// the named credential. A matched element whose children carry markup
// has that inner markup collapsed to a single encrypted text node;
// plain-text nodes are encrypted in place. Paths that match nothing
// leave the document's nodes unchanged; the output is still
// re-serialized, and an XML declaration is added when the input has
// none.
func (e *Engine) EncryptXML(ctx context.Context, document string, paths []string, credential string) (string, error) {
	start := time.Now()
	emitStart(ctx, "xml", "encrypt", credential, len(paths))
	out, rewritten, err := e.encryptXML(ctx, document, paths, credential)
	emitComplete(ctx, "xml", "encrypt", credential, len(paths), rewritten, time.Since(start), err)
	return out, err
}

func (e *Engine) encryptXML(ctx context.Context, document string, paths []string, credential string) (string, int, error) {
	if err := checkPaths(paths); err != nil {
		return "", 0, err
	}
	doc, err := xmlParse(document)
	if err != nil {
		return "", 0, err
	}
	enc := &lazyEncryptor{crypto: e.crypto, credential: credential}
	rewritten := 0
	for _, path := range paths {
		matches, err := matchXML(doc, path)
		if err != nil {
			return "", rewritten, err
		}
		for i, node := range matches {
			if err := checkCanceled(ctx, path, i); err != nil {
				return "", rewritten, err
			}
			handle, err := enc.get()
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			ciphertext, err := handle.EncryptString(nodePlaintext(node))
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			setNodeText(node, ciphertext)
			rewritten++
		}
	}
	return doc.OutputXML(false), rewritten, nil
}

// DecryptXML is the inverse traversal: every matched node whose text is
// a ciphertext envelope is decrypted; when the plaintext parses as XML
// markup it is restored as child nodes, otherwise it becomes a literal
// text value. Matched values that are not envelopes are skipped.
func (e *Engine) DecryptXML(ctx context.Context, document string, paths []string, credential string) (string, error) {
	start := time.Now()
	emitStart(ctx, "xml", "decrypt", credential, len(paths))
	out, rewritten, err := e.decryptXML(ctx, document, paths, credential)
	emitComplete(ctx, "xml", "decrypt", credential, len(paths), rewritten, time.Since(start), err)
	return out, err
}

func (e *Engine) decryptXML(ctx context.Context, document string, paths []string, credential string) (string, int, error) {
	if err := checkPaths(paths); err != nil {
		return "", 0, err
	}
	doc, err := xmlParse(document)
	if err != nil {
		return "", 0, err
	}
	dec := &lazyDecryptor{crypto: e.crypto, credential: credential}
	rewritten := 0
	for _, path := range paths {
		matches, err := matchXML(doc, path)
		if err != nil {
			return "", rewritten, err
		}
		for i, node := range matches {
			if err := checkCanceled(ctx, path, i); err != nil {
				return "", rewritten, err
			}
			handle, err := dec.get()
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			plain, changed, err := decryptProbe(handle, node.InnerText())
			if err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			if !changed {
				continue
			}
			if children, err := parseFragment(plain); err == nil {
				setNodeChildren(node, children)
			} else {
				setNodeText(node, plain)
			}
			rewritten++
		}
	}
	return doc.OutputXML(false), rewritten, nil
}

// matchXML validates path and evaluates it against doc, returning an
// eager snapshot of the matches so rewrites cannot invalidate the
// iteration.
func matchXML(doc *xmlquery.Node, path string) ([]*xmlquery.Node, error) {
	if path == "" {
		return nil, newPathError(ErrInvalidPath, path, -1)
	}
	matches, err := xmlquery.QueryAll(doc, path)
	if err != nil {
		return nil, newPathError(fmt.Errorf("%w: %v", ErrInvalidPath, err), path, -1)
	}
	return matches, nil
}

// nodePlaintext returns the value to encrypt for node: the serialized
// inner markup when the node has element children whose markup differs
// from its text value, the text value otherwise.
func nodePlaintext(n *xmlquery.Node) string {
	if hasElementChild(n) {
		if inner := innerXML(n); inner != n.InnerText() {
			return inner
		}
	}
	return n.InnerText()
}

func hasElementChild(n *xmlquery.Node) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == xmlquery.ElementNode {
			return true
		}
	}
	return false
}

// innerXML serializes the node's children, markup included.
func innerXML(n *xmlquery.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(c.OutputXML(true))
	}
	return sb.String()
}

// setNodeText deletes the node's children and installs a single text
// child holding text.
func setNodeText(n *xmlquery.Node, text string) {
	n.FirstChild = nil
	n.LastChild = nil
	xmlquery.AddChild(n, &xmlquery.Node{Type: xmlquery.TextNode, Data: text})
}

// setNodeChildren replaces the node's children with the given nodes.
func setNodeChildren(n *xmlquery.Node, children []*xmlquery.Node) {
	n.FirstChild = nil
	n.LastChild = nil
	for _, c := range children {
		c.PrevSibling = nil
		c.NextSibling = nil
		xmlquery.AddChild(n, c)
	}
}

// parseFragment parses s as inner XML markup and returns its top-level
// nodes. An error means s is not well-formed markup and should be kept
// as literal text.
func parseFragment(s string) ([]*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(strings.NewReader("<fragment>" + s + "</fragment>"))
	if err != nil {
		return nil, err
	}
	wrapper := doc.FirstChild
	for wrapper != nil && wrapper.Type != xmlquery.ElementNode {
		wrapper = wrapper.NextSibling
	}
	if wrapper == nil {
		return nil, fmt.Errorf("empty fragment")
	}
	var children []*xmlquery.Node
	for c := wrapper.FirstChild; c != nil; c = c.NextSibling {
		children = append(children, c)
	}
	return children, nil
}
