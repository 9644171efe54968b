package deps

import (
	"fmt"
	"os/exec"
	"strings"
)

// jsRuntimeBinaries lists the runtimes yt-dlp can use to solve YouTube
// player challenges, in the order yt-dlp probes them for "auto".
var jsRuntimeBinaries = []struct {
	name    string
	command string
}{
	{name: "deno", command: "deno"},
	{name: "node", command: "node"},
	{name: "bun", command: "bun"},
	{name: "quickjs", command: "qjs"},
}

// CheckJSRuntime reports the JavaScript runtime yt-dlp will pick up for the
// configured js_runtime value. A missing runtime only degrades extraction,
// so the result is always optional.
func CheckJSRuntime(configured string) Status {
	result := Status{
		Name:        "JS runtime",
		Description: "Lets yt-dlp solve YouTube player challenges",
		Optional:    true,
	}

	want := strings.ToLower(strings.TrimSpace(configured))
	if want == "" || want == "auto" {
		for _, candidate := range jsRuntimeBinaries {
			if path, err := exec.LookPath(candidate.command); err == nil {
				result.Command = candidate.command
				result.Path = path
				result.Available = true
				result.Detail = candidate.name
				return result
			}
		}
		result.Command = "auto"
		result.Detail = "no deno, node, bun, or qjs on PATH"
		return result
	}

	for _, candidate := range jsRuntimeBinaries {
		if candidate.name != want {
			continue
		}
		result.Command = candidate.command
		if path, err := exec.LookPath(candidate.command); err == nil {
			result.Path = path
			result.Available = true
			result.Detail = candidate.name
			return result
		}
		result.Detail = fmt.Sprintf("binary %q not found", candidate.command)
		return result
	}

	result.Command = want
	result.Detail = fmt.Sprintf("unknown runtime %q", want)
	return result
}
