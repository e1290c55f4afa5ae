package observers

import (
	einocb "github.com/cloudwego/eino/callbacks"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"
)

// NewAllCallbacks aggregates all observer handlers (prompt, model) into one
// callbacks.Handler.
func NewAllCallbacks() einocb.Handler {
	promptHandler := newPromptHandler()
	modelHandler := newModelHandler()

	return callbackHelper.NewHandlerHelper().
		ChatModel(modelHandler).
		Prompt(promptHandler).
		Handler()
}
