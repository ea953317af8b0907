package tui

// DefaultText 是启动和 Reset 时的缓冲区内容。
const DefaultText = `// Welcome to the JS Runner!
// Press Ctrl+R (or F5) to execute, Ctrl+F to format.
// Ctrl+P opens the command palette.

if (true) {
  console.log("Hello, I am JS Runner!");
}`

const (
	appTitle            = "JS Runner"
	toolbarHeight       = 1
	statusHeight        = 1
	consoleHeaderHeight = 1
)
