// Smartcommits writes conventional commit messages for staged changes with
// an LLM provider (Groq, OpenRouter or Cohere).
//
// It runs from git's prepare-commit-msg hook or on demand, and ships a
// security self-test for its own input handling.
//
// Usage:
//
//	smartcommits install              # install the prepare-commit-msg hook
//	smartcommits generate             # print a message for the staged diff
//	smartcommits commit --dry-run     # generate without committing
//	smartcommits config show          # effective configuration, key masked
//	smartcommits test                 # check the provider and API key
//	smartcommits security-test        # run the security self-test
//
// Configuration lives in .commitgen.yml at the repository root; API keys
// come from the environment or the repository's .env file.
package main
