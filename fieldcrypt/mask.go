package fieldcrypt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/antchfx/xmlquery"
	"github.com/ohler55/ojg/oj"
	"github.com/zoobzio/sealant"
)

// MaskXML rewrites every node matched by the XPath expressions with the
// builtin masker for mt. Traversal, ordering and path validation follow
// EncryptXML; no credential is involved and the rewrite is one-way.
func (e *Engine) MaskXML(ctx context.Context, document string, paths []string, mt sealant.MaskType) (string, error) {
	start := time.Now()
	emitStart(ctx, "xml", "mask", string(mt), len(paths))
	out, rewritten, err := maskXML(ctx, document, paths, mt)
	emitComplete(ctx, "xml", "mask", string(mt), len(paths), rewritten, time.Since(start), err)
	return out, err
}

func maskXML(ctx context.Context, document string, paths []string, mt sealant.MaskType) (string, int, error) {
	if err := checkPaths(paths); err != nil {
		return "", 0, err
	}
	masker, err := sealant.MaskerFor(mt)
	if err != nil {
		return "", 0, err
	}
	doc, err := xmlParse(document)
	if err != nil {
		return "", 0, err
	}
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
			setNodeText(node, masker.Mask(node.InnerText()))
			rewritten++
		}
	}
	return doc.OutputXML(false), rewritten, nil
}

// MaskJSON rewrites every token matched by the JSONPath expressions
// with the builtin masker for mt. String tokens are masked directly;
// any other token is masked from its minified serialization and so
// becomes a string.
func (e *Engine) MaskJSON(ctx context.Context, document string, paths []string, mt sealant.MaskType) (string, error) {
	start := time.Now()
	emitStart(ctx, "json", "mask", string(mt), len(paths))
	out, rewritten, err := maskJSON(ctx, document, paths, mt)
	emitComplete(ctx, "json", "mask", string(mt), len(paths), rewritten, time.Since(start), err)
	return out, err
}

func maskJSON(ctx context.Context, document string, paths []string, mt sealant.MaskType) (string, int, error) {
	if err := checkPaths(paths); err != nil {
		return "", 0, err
	}
	masker, err := sealant.MaskerFor(mt)
	if err != nil {
		return "", 0, err
	}
	data, err := oj.ParseString(document)
	if err != nil {
		return "", 0, fmt.Errorf("parsing document: %w", err)
	}
	rewritten := 0
	for _, path := range paths {
		locs, err := matchJSON(data, path)
		if err != nil {
			return "", rewritten, err
		}
		for i, loc := range locs {
			if err := checkCanceled(ctx, path, i); err != nil {
				return "", rewritten, err
			}
			value := loc.First(data)
			s, isString := value.(string)
			if !isString {
				s = oj.JSON(value, &jsonOptions)
			}
			masked := masker.Mask(s)
			if isRoot(loc) {
				return oj.JSON(masked, &jsonOptions), rewritten + 1, nil
			}
			if err := loc.Set(data, masked); err != nil {
				return "", rewritten, newPathError(err, path, i)
			}
			rewritten++
		}
	}
	return oj.JSON(data, &jsonOptions), rewritten, nil
}

// xmlParse parses an XML document string.
func xmlParse(document string) (*xmlquery.Node, error) {
	doc, err := xmlquery.Parse(strings.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return doc, nil
}
