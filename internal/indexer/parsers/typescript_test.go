package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Test Plan for TypeScriptParser:
// - module path from the file path is the namespace
// - named, default, namespace and side-effect imports; relative specifiers resolve
// - classes, abstract classes, interfaces and enums with heritage edges
// - constructor parameter properties become typed fields
// - decorators, docblocks, accessibility and # private names
// - this/super/this.field/local/module receivers and new expressions
// - JavaScript require() bindings and JSX files
// - ambient declarations are reported as unsupported
// - module-level variables are visible to every function, before or after their declaration

const tsOrders = `import { Injectable } from "@core/di";
import * as fs from "fs";
import Repo, { Order as O } from "./models/order";
import "./polyfills";

const MAX_ITEMS = 50;

/** Loads orders. */
export async function load(path: string): Promise<void> {
  const data = fs.readFileSync(path);
  const handler = pick();
  handler(data);
}

export const format = (o: O) => o.toString();

@Injectable()
export class OrderService extends BaseService implements Service {
  private cache = new Cache();

  constructor(private repo: Repo, readonly name: string) {
    super(repo);
  }

  /** Places an order. */
  async place(item: Item): Promise<void> {
    const order = new O(item);
    order.submit();
    item.validate();
    this.repo.save(order);
    this.cache.clear();
    this.audit(order);
    super.place(item);
    this.handlers[0](order);
  }

  static create(): OrderService {
    return new OrderService(new Repo(), "x");
  }

  #secret() {}

  protected audit(order: O): void {}
}

export interface Service extends Named {
  place(item: Item): Promise<void>;
}

export enum Status { Open, Closed = "closed" }

abstract class BaseService {
  abstract place(item: Item): Promise<void>;
}
`

// Test: Declarations are qualified by module path
func TestTypeScriptParser_Symbols(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageTypeScript, "src/shop/orders.ts", tsOrders)
	const svc = "src.shop.orders.OrderService"

	assert.Equal(t, "src.shop.orders", u.Namespace)
	assert.Equal(t, []string{
		"src.shop.orders.MAX_ITEMS",
		"src.shop.orders.load",
		"src.shop.orders.format",
		svc,
		svc + ".cache",
		svc + ".<init>",
		svc + ".repo",
		svc + ".name",
		svc + ".place",
		svc + ".create",
		svc + ".secret",
		svc + ".audit",
		"src.shop.orders.Service",
		"src.shop.orders.Service.place",
		"src.shop.orders.Status",
		"src.shop.orders.Status.Open",
		"src.shop.orders.Status.Closed",
		"src.shop.orders.BaseService",
		"src.shop.orders.BaseService.place",
	}, qualifiedNames(u))

	assert.Equal(t, extraction.KindConstant, symbol(t, u, "src.shop.orders.MAX_ITEMS").Kind)

	load := symbol(t, u, "src.shop.orders.load")
	assert.Equal(t, "async function load(path: string): Promise<void>", load.Signature)
	assert.Equal(t, []string{"async"}, load.Modifiers)
	require.NotNil(t, load.DocComment)
	assert.Equal(t, "Loads orders.", *load.DocComment)

	assert.Equal(t, extraction.KindFunction, symbol(t, u, "src.shop.orders.format").Kind)

	class := symbol(t, u, svc)
	assert.Equal(t, extraction.KindClass, class.Kind)
	assert.Equal(t, []string{"@Injectable()"}, class.Annotations)
	assert.Equal(t, "class OrderService extends BaseService implements Service", class.Signature)

	assert.Equal(t, extraction.VisibilityPrivate, symbol(t, u, svc+".cache").Visibility)
	assert.Equal(t, "constructor", symbol(t, u, svc+".<init>").Name)

	repo := symbol(t, u, svc+".repo")
	assert.Equal(t, extraction.KindField, repo.Kind)
	assert.Equal(t, extraction.VisibilityPrivate, repo.Visibility)
	assert.Equal(t, svc, repo.Container)
	assert.Equal(t, []string{"readonly"}, symbol(t, u, svc+".name").Modifiers)

	place := symbol(t, u, svc+".place")
	require.NotNil(t, place.DocComment)
	assert.Equal(t, "Places an order.", *place.DocComment)
	assert.Equal(t, []string{"async"}, place.Modifiers)

	assert.Equal(t, []string{"static"}, symbol(t, u, svc+".create").Modifiers)
	assert.Equal(t, extraction.VisibilityPrivate, symbol(t, u, svc+".secret").Visibility)
	assert.Equal(t, extraction.VisibilityProtected, symbol(t, u, svc+".audit").Visibility)

	assert.Equal(t, extraction.KindInterface, symbol(t, u, "src.shop.orders.Service").Kind)
	assert.Contains(t, symbol(t, u, "src.shop.orders.Service.place").Modifiers, "abstract")
	assert.Equal(t, extraction.KindEnum, symbol(t, u, "src.shop.orders.Status").Kind)
	assert.Equal(t, extraction.KindConstant, symbol(t, u, "src.shop.orders.Status.Closed").Kind)
	assert.Equal(t, []string{"abstract"}, symbol(t, u, "src.shop.orders.BaseService").Modifiers)
	assert.Equal(t, []string{"abstract"}, symbol(t, u, "src.shop.orders.BaseService.place").Modifiers)
}

// Test: Import forms and heritage clauses
func TestTypeScriptParser_ImportsAndInheritance(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageTypeScript, "src/shop/orders.ts", tsOrders)
	require.Len(t, u.Imports, 5)

	injectable := u.Imports[0]
	assert.Equal(t, "@core/di", injectable.ImportedPath)
	require.NotNil(t, injectable.ImportedSymbol)
	assert.Equal(t, "Injectable", *injectable.ImportedSymbol)
	assert.False(t, injectable.IsRelative)

	fs := u.Imports[1]
	assert.True(t, fs.IsModule)
	require.NotNil(t, fs.LocalAlias)
	assert.Equal(t, "fs", *fs.LocalAlias)

	repo := u.Imports[2]
	assert.True(t, repo.IsRelative)
	assert.True(t, repo.IsModule)
	assert.Equal(t, "src.shop.models.order", repo.QualifiedPath)

	order := u.Imports[3]
	require.NotNil(t, order.LocalAlias)
	assert.Equal(t, "O", *order.LocalAlias)
	assert.Equal(t, "src.shop.models.order.Order", order.QualifiedPath)

	polyfills := u.Imports[4]
	assert.Equal(t, "./polyfills", polyfills.ImportedPath)
	assert.Nil(t, polyfills.ImportedSymbol)
	assert.Nil(t, polyfills.LocalAlias)

	assert.Equal(t, []extraction.InheritanceEdge{
		{Child: "src.shop.orders.OrderService", Parent: "BaseService", Kind: extraction.Extends},
		{Child: "src.shop.orders.OrderService", Parent: "Service", Kind: extraction.Implements},
		{Child: "src.shop.orders.Service", Parent: "Named", Kind: extraction.Extends},
	}, u.Inheritance)
}

// Test: Call site receivers and tracked types
func TestTypeScriptParser_CallSites(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageTypeScript, "src/shop/orders.ts", tsOrders)
	const svc = "src.shop.orders.OrderService"

	read := site(t, u, "readFileSync")
	assert.Equal(t, extraction.ReceiverIdentifier, read.Receiver)
	assert.Equal(t, "fs", read.ReceiverText)
	assert.False(t, read.ReceiverIsLocal)
	assert.Equal(t, "src.shop.orders.load", read.Caller)

	assert.True(t, site(t, u, "handler").CalleeIsLocal)
	assert.Equal(t, extraction.ReceiverNone, site(t, u, "pick").Receiver)

	toString := site(t, u, "toString")
	assert.True(t, toString.ReceiverIsLocal)
	assert.Equal(t, "O", toString.ReceiverType)
	assert.Equal(t, "src.shop.orders.format", toString.Caller)

	orderCtor := site(t, u, "O")
	assert.True(t, orderCtor.Constructor)
	assert.Equal(t, 1, orderCtor.ArgumentCount)
	assert.Equal(t, svc+".place", orderCtor.Caller)

	submit := site(t, u, "submit")
	assert.True(t, submit.ReceiverIsLocal)
	assert.Equal(t, "O", submit.ReceiverType)
	assert.Equal(t, "Item", site(t, u, "validate").ReceiverType)

	save := site(t, u, "save")
	assert.Equal(t, extraction.ReceiverSelfField, save.Receiver)
	assert.Equal(t, "repo", save.ReceiverText)
	assert.Equal(t, "Repo", save.ReceiverType)
	assert.Equal(t, "Cache", site(t, u, "clear").ReceiverType)

	audit := site(t, u, "audit")
	assert.Equal(t, extraction.ReceiverSelf, audit.Receiver)
	assert.Equal(t, svc, audit.EnclosingType)

	superPlace := site(t, u, "place")
	assert.Equal(t, extraction.ReceiverSuper, superPlace.Receiver)
	assert.False(t, superPlace.Constructor)

	assert.Equal(t, 2, site(t, u, "OrderService").ArgumentCount)
	assert.True(t, site(t, u, "Repo").Constructor)

	var superCtor, dynamic []extraction.CallSite
	for _, s := range u.CallSites {
		if s.Receiver == extraction.ReceiverSuper && s.Constructor {
			superCtor = append(superCtor, s)
		}
		if s.Dynamic {
			dynamic = append(dynamic, s)
		}
	}
	require.Len(t, superCtor, 1)
	assert.Equal(t, svc+".<init>", superCtor[0].Caller)
	require.Len(t, dynamic, 1)
	assert.Equal(t, "this.handlers[0]", dynamic[0].Expression)
}

// Test: JavaScript require() bindings and JSX sources
func TestTypeScriptParser_JavaScript(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageJavaScript, "web/app.jsx", `const path = require("path");
const util = require("./util");

function App(props) {
  const name = path.basename(props.file);
  return <div>{util.title(name)}</div>;
}
`)

	assert.Equal(t, extraction.LanguageJavaScript, u.Language)
	assert.Equal(t, "web.app", u.Namespace)
	assert.Empty(t, constructs(u))

	require.Len(t, u.Imports, 2)
	require.NotNil(t, u.Imports[0].LocalAlias)
	assert.Equal(t, "path", *u.Imports[0].LocalAlias)
	assert.True(t, u.Imports[0].IsModule)
	assert.True(t, u.Imports[1].IsRelative)
	assert.Equal(t, "web.util", u.Imports[1].QualifiedPath)

	assert.Equal(t, []string{"web.app.App"}, qualifiedNames(u))

	basename := site(t, u, "basename")
	assert.Equal(t, "path", basename.ReceiverText)
	assert.Equal(t, "web.app.App", basename.Caller)

	title := site(t, u, "title")
	assert.Equal(t, extraction.ReceiverIdentifier, title.Receiver)
	assert.Equal(t, "util", title.ReceiverText)
}

// Test: Ambient declarations are recorded and skipped
func TestTypeScriptParser_Unsupported(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageTypeScript, "types.d.ts", `declare module "legacy" {
  export function old(): void;
}

export function current(): void {}
`)

	assert.Equal(t, []string{"ambient declaration"}, constructs(u))
	assert.Equal(t, []string{"types.d.current"}, qualifiedNames(u))
}

const tsDispatch = `import { ApiClient } from "./client";

export function stop(): void {
  session.end();
}

const handler = pickHandler();
const client = new ApiClient();
const { retries } = loadSettings();
let session: Session = openSession();

export function run(): void {
  handler();
  client.get("/");
  retries.toFixed();
}

export const format = (v: number) => v.toFixed(2);
format(1);
`

// Test: Module-level variables bind calls in functions declared before them
func TestTypeScriptParser_ModuleVariables(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageTypeScript, "src/dispatch.ts", tsDispatch)

	handler := site(t, u, "handler")
	assert.Equal(t, "src.dispatch.run", handler.Caller)
	assert.True(t, handler.CalleeIsLocal)

	get := site(t, u, "get")
	assert.True(t, get.ReceiverIsLocal)
	assert.Equal(t, "ApiClient", get.ReceiverType)

	end := site(t, u, "end")
	assert.Equal(t, "src.dispatch.stop", end.Caller)
	assert.True(t, end.ReceiverIsLocal)
	assert.Equal(t, "Session", end.ReceiverType)

	var toFixed []extraction.CallSite
	for _, s := range u.CallSites {
		if s.Member == "toFixed" && s.ReceiverText == "retries" {
			toFixed = append(toFixed, s)
		}
	}
	require.Len(t, toFixed, 1)
	assert.True(t, toFixed[0].ReceiverIsLocal)

	// Arrow functions stay declared functions, not callable variables.
	assert.False(t, site(t, u, "format").CalleeIsLocal)
	symbol(t, u, "src.dispatch.format")
}
