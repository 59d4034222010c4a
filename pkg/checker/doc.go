// Package checker is the file analyzer. It walks one module's syntax tree
// after the passes have declared its bindings, installs lazy resolvers for
// every declaration, infers and checks expression types with contextual
// typing, narrows references along control flow, resolves overloads and
// generic calls, and records diagnostics. Checking problems never abort a
// module: a failing expression takes the fallback type and analysis
// continues.
//
// Imports are obtained through an Importer supplied by the module loader,
// which may answer with placeholder exports while the target is still being
// analyzed further up an import cycle.
package checker
