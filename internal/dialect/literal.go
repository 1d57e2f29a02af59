package dialect

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/tablegate/tablegate/internal/fieldkind"
)

// numberLiteral/boolLiteral/blobBytes/datetimeText pull the typed Go
// value back out of the interface{} that each engine's PrintLiteral
// receives, which is always the native value produced by
// field.DeserializeCell (int64/float64, []byte, time.Time, bool, string).

func numberLiteral(native interface{}) (string, error) {
	switch v := native.(type) {
	case int64:
		return strconv.FormatInt(v, 10), nil
	case int:
		return strconv.Itoa(v), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("dialect: expected numeric value, got %T", native)
	}
}

func boolLiteral(native interface{}, trueLit, falseLit string) (string, error) {
	b, ok := native.(bool)
	if !ok {
		return "", fmt.Errorf("dialect: expected bool, got %T", native)
	}
	if b {
		return trueLit, nil
	}
	return falseLit, nil
}

func blobBytes(native interface{}) ([]byte, error) {
	switch v := native.(type) {
	case []byte:
		return v, nil
	case string:
		if b, err := base64.StdEncoding.DecodeString(v); err == nil {
			return b, nil
		}
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("dialect: expected []byte, got %T", native)
	}
}

func datetimeText(native interface{}, layout string) (string, error) {
	switch v := native.(type) {
	case time.Time:
		return v.UTC().Format(layout), nil
	case string:
		return v, nil
	default:
		return "", fmt.Errorf("dialect: expected time.Time, got %T", native)
	}
}

// sqlStringEscape doubles single quotes, the ANSI-SQL escaping rule
// shared by every engine this gateway targets (each engine's printString
// wraps this with its own quote character and any driver-specific
// extras).
func sqlStringEscape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func hexBlobLiteral(prefix, suffix string, b []byte) string {
	return prefix + hex.EncodeToString(b) + suffix
}

// unsupportedKind reports a PrintLiteral call for a field kind the
// engine has no literal rule for (should never happen given a correct
// DataModel, but defends the UNDEFINED-into-SQL invariant).
func unsupportedKind(engine string, kind fieldkind.Kind) error {
	return fmt.Errorf("dialect: %s: unsupported field kind %v", engine, kind)
}
