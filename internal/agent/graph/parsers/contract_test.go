package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSolidity(t *testing.T) {
	t.Run("single fenced block with prose", func(t *testing.T) {
		in := "Here you go:\n```solidity\ncontract X {}\n```\nEnjoy."
		code, remainder := ExtractSolidity(in)
		assert.Equal(t, "contract X {}", code)
		assert.Equal(t, "Here you go:\n\nEnjoy.", remainder)
	})

	t.Run("no fenced block leaves input unchanged", func(t *testing.T) {
		in := "No contract here, just chatting.\nSecond line."
		code, remainder := ExtractSolidity(in)
		assert.Empty(t, code)
		assert.Equal(t, in, remainder)
	})

	t.Run("untagged fence is ignored", func(t *testing.T) {
		in := "```\ncontract X {}\n```"
		code, remainder := ExtractSolidity(in)
		assert.Empty(t, code)
		assert.Equal(t, in, remainder)
	})

	t.Run("only the first block is extracted", func(t *testing.T) {
		in := "A\n```solidity\ncontract First {}\n```\nB\n```solidity\ncontract Second {}\n```\nC"
		code, remainder := ExtractSolidity(in)
		assert.Equal(t, "contract First {}", code)
		assert.Contains(t, remainder, "contract Second {}")
		assert.NotContains(t, remainder, "contract First {}")
	})

	t.Run("block only input", func(t *testing.T) {
		in := "```solidity\npragma solidity ^0.8.0;\ncontract Escrow {}\n```"
		code, remainder := ExtractSolidity(in)
		assert.Equal(t, "pragma solidity ^0.8.0;\ncontract Escrow {}", code)
		assert.Empty(t, remainder)
	})
}
