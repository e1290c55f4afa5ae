package parsers

import (
	"regexp"
	"strings"
)

// solidityFence matches the first fenced block tagged as Solidity source,
// non-greedy so later fences in the same output are left alone.
var solidityFence = regexp.MustCompile("(?s)```solidity(.*?)```")

// ExtractSolidity separates the first fenced Solidity block from the
// surrounding prose. code is the block interior with the fence markers and
// language tag stripped and whitespace trimmed; remainder is the original
// text with the whole fenced block removed and trimmed. When no block is
// found, code is empty and remainder is the input unchanged.
func ExtractSolidity(content string) (code string, remainder string) {
	loc := solidityFence.FindStringSubmatchIndex(content)
	if loc == nil {
		return "", content
	}
	code = strings.TrimSpace(content[loc[2]:loc[3]])
	remainder = strings.TrimSpace(content[:loc[0]] + content[loc[1]:])
	return code, remainder
}
