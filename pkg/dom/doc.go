// Package dom defines the host tree capability the expansion engine works
// against.
//
// The engine never parses or serializes markup itself. It borrows Node
// handles from a tree produced by a Parser, queries them with a Selector,
// reads and writes attributes, and moves generated nodes next to template
// markers. Two implementations ship with htmlgen:
//
//   - htmldom: HTML documents and fragments on golang.org/x/net/html
//   - xmldom: XML documents and fragments on github.com/beevik/etree
//
// Both implementations allow concurrent reads of one tree while no
// goroutine mutates it. Mutation must be serialized by the caller.
package dom
