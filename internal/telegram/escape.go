package telegram

import "strings"

var markdownV2Escaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
	"#", `\#`,
	"+", `\+`,
	"=", `\=`,
	"|", `\|`,
	"{", `\{`,
	"}", `\}`,
	".", `\.`,
	"!", `\!`,
	"-", `\-`,
)

// EscapeMarkdownV2 escapes every character MarkdownV2 reserves.
func EscapeMarkdownV2(s string) string {
	return markdownV2Escaper.Replace(s)
}
