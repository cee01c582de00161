// Package chat provides the interactive TUI chat client for BiteBot.
// This file contains help text content for command documentation.
package chat

// =============================================================================
// HELP TEXT CONSTANTS
// =============================================================================

// helpCommandText contains the full help message for /help.
const helpCommandText = `## BiteBot Commands

| Command | Description |
|---------|-------------|
| /help | Show this help message |
| /reset | Clear the conversation and start over (asks first) |
| /quit | Exit (also /exit, /q) |

### Keyboard Shortcuts

| Key | Action |
|-----|--------|
| Enter | Send message |
| Alt+Enter | Insert a newline |
| Up / Down | Recall earlier input (cursor on first/last line) |
| PgUp / PgDn | Scroll the conversation |
| Ctrl+R | Reset the conversation (asks first) |
| Ctrl+C | Exit |

### Asking for a table

Just type naturally:

- "Find me a Thai place near Capitol Hill for 4 tomorrow at 7"
- "Book the second one under the name Dana"
- "What reservations do I have?"

Confirmed reservations appear in the panel on the right.
`
