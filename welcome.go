package mdnarrate

// WelcomeMarkdown is shown until the first document is loaded.
const WelcomeMarkdown = `# Welcome to mdnarrate

## How to use it

1. Pass a file when starting: ` + "`mdnarrate notes.md`" + `
2. Type ` + "`open path/to/file.md`" + ` at the prompt, or use the text box of the web remote
3. Type ` + "`start`" + ` to hear the document read aloud while the page scrolls along

### Supported Markdown

GitHub Flavored Markdown with:

- [x] Headings and text formatting
- [x] Ordered and unordered lists
- [x] Task lists
- [x] Tables
- [x] Code blocks with syntax highlighting
- [x] Links and images
- [x] Quotes, footnotes, and ==highlights==
- [x] Emoji shortcodes :sparkles:
- [x] Narration with automatic scrolling

---

Type ` + "`help`" + ` at the prompt for every command.
`
