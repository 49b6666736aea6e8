package manifest

import "github.com/matzehuels/spmgraph/pkg/manifest/syntax"

// legacyPlatformCodes maps version tokens to the short codes earlier
// releases of this tool emitted. The table is keyed by the literal token;
// it is not a version comparison.
var legacyPlatformCodes = map[string]string{
	"v10_13": "3",
	"v10_14": "4",
	"v10_15": "5",
	"v5":     "5",
	"v6":     "6",
	"v7":     "7",
	"v8":     "8",
	"v9":     "9",
	"v10":    "0",
	"v11":    "1",
	"v12":    "2",
	"v13":    "3",
	"v14":    "4",
	"v15":    "5",
	"v16":    "6",
	"v17":    "7",
	"v18":    "8",
}

// PlatformCode maps a platform version token to its legacy code. Tokens
// outside the table are returned unchanged.
func PlatformCode(token string) string {
	if code, ok := legacyPlatformCodes[token]; ok {
		return code
	}
	return token
}

// readPlatforms returns nil for an empty or unrecognizable array.
func readPlatforms(arr *syntax.Array) map[string]string {
	var out map[string]string
	for _, e := range arr.Elems {
		c, ok := e.(*syntax.Call)
		if !ok || len(c.Args) == 0 {
			continue
		}
		m, ok := c.Callee.(*syntax.Member)
		if !ok {
			continue
		}
		var token string
		switch v := c.Args[0].Value.(type) {
		case *syntax.Member:
			token = v.Name
		case *syntax.String:
			token = v.Value
		default:
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[m.Name] = PlatformCode(token)
	}
	return out
}
