// Copyright 2018 Benjamin Estes. All rights reserved.  Use of this
// source code is governed by an MIT-style license that can be found
// in the LICENSE file.

// Package data provides the types exchanged between the loader and
// its host: the address of a remote module, the result of loading
// it, and the metadata recorded for it. Fields are exported since
// metadata records are marshalled to disk as JSON.
//
// An Address describes a single canonical URL. It is the only
// identity a remote artifact has; two URLs that differ in any way
// after parsing are different artifacts.
package data
