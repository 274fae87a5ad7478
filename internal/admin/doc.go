// Package admin implements list, create, edit and delete for every content
// variant with a single generic Manager driven by the variant's schema.
//
// Forms hold string values and parse them on submit. Client-side validation
// failures never reach the network. Server refusals leave the form open with
// its values and a Notice. Deletions are two-step: PrepareDelete returns a
// PendingDelete that sends nothing until confirmed.
package admin
