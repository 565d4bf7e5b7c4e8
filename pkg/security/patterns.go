package security

import "regexp"

// Severity classifies how serious a dangerous-pattern hit is.
type Severity string

const (
	SeverityWarn  Severity = "warn"
	SeverityError Severity = "error"
)

// DangerousPattern is one entry in the dangerous-pattern scan:
// case-insensitive, whitespace-tolerant detection of forbidden
// identifiers, each carrying a severity and a rationale.
type DangerousPattern struct {
	Name      string
	Category  string
	Regex     *regexp.Regexp
	Severity  Severity
	Rationale string
}

// w compiles a pattern body case-insensitively. Whitespace between tokens
// (e.g. "os . system") is tolerated by the \s* each body places between them.
func w(body string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + body)
}

// defaultPatterns is the built-in dangerous-pattern table. Arbitrary code
// execution primitives are errors — they make the transformed source
// capable of doing anything regardless of what the rest of the file says.
// Sensitive filesystem and network surface is a warning: legitimate kinda
// programs may touch files or sockets, but they do it often enough in
// tandem with other red flags that the risk-aggregation step in scanner.go
// wants to see it counted.
var defaultPatterns = []DangerousPattern{
	{
		Name:      "eval",
		Category:  "dynamic-execution",
		Regex:     w(`\beval\s*\(`),
		Severity:  SeverityError,
		Rationale: "eval() executes arbitrary strings as code",
	},
	{
		Name:      "exec",
		Category:  "dynamic-execution",
		Regex:     w(`\bexec\s*\(`),
		Severity:  SeverityError,
		Rationale: "exec() executes arbitrary strings as code",
	},
	{
		Name:      "compile",
		Category:  "dynamic-execution",
		Regex:     w(`\bcompile\s*\(`),
		Severity:  SeverityError,
		Rationale: "compile() builds code objects from arbitrary strings",
	},
	{
		Name:      "dunder-import",
		Category:  "dynamic-execution",
		Regex:     w(`__import__\s*\(`),
		Severity:  SeverityError,
		Rationale: "__import__() can load arbitrary modules at runtime",
	},
	{
		Name:      "os-system",
		Category:  "shell-execution",
		Regex:     w(`\bos\s*\.\s*system\s*\(`),
		Severity:  SeverityError,
		Rationale: "os.system() runs an arbitrary shell command",
	},
	{
		Name:      "subprocess",
		Category:  "shell-execution",
		Regex:     w(`\bsubprocess\s*\.\s*\w+\s*\(`),
		Severity:  SeverityError,
		Rationale: "subprocess.* spawns an arbitrary external process",
	},
	{
		Name:      "popen",
		Category:  "shell-execution",
		Regex:     w(`\bos\s*\.\s*popen\s*\(`),
		Severity:  SeverityError,
		Rationale: "os.popen() runs an arbitrary shell command",
	},
	{
		Name:      "sensitive-path-open",
		Category:  "filesystem",
		Regex:     w(`\bopen\s*\(\s*["'](?:/etc/|/root/|~/\.ssh)`),
		Severity:  SeverityWarn,
		Rationale: "open() targets a sensitive filesystem path",
	},
	{
		Name:      "network-socket",
		Category:  "network",
		Regex:     w(`\bimport\s+socket\b`),
		Severity:  SeverityWarn,
		Rationale: "imports the socket module",
	},
	{
		Name:      "network-requests",
		Category:  "network",
		Regex:     w(`\bimport\s+(?:requests|urllib)\b`),
		Severity:  SeverityWarn,
		Rationale: "imports a network-capable module",
	},
	{
		Name:      "import-os",
		Category:  "filesystem",
		Regex:     w(`\bimport\s+os\b`),
		Severity:  SeverityWarn,
		Rationale: "imports the os module",
	},
	{
		Name:      "import-pickle",
		Category:  "deserialization",
		Regex:     w(`\bimport\s+pickle\b`),
		Severity:  SeverityWarn,
		Rationale: "pickle deserialization constructs arbitrary objects",
	},
	{
		Name:      "import-ctypes",
		Category:  "native-code",
		Regex:     w(`\bimport\s+ctypes\b`),
		Severity:  SeverityWarn,
		Rationale: "ctypes calls into arbitrary native code",
	},
}
