package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Test Plan for PythonParser:
// - module path from the file path is the namespace
// - import forms: dotted, aliased, from-import, relative and wildcard
// - docstrings, decorators, underscore visibility and class-level fields
// - __init__ is recorded as the <init> constructor
// - self/cls/super()/self.field/local/module receivers produce the right shapes
// - constructor assignments and annotations give locals and fields a type
// - callable locals and computed callees are flagged
// - module-level variables are visible to every function, before or after their assignment

const pythonOrders = `"""Order handling."""
import os.path
import pandas as pd
from .models import Order, Customer as Buyer
from ..util import *
from typing import Optional

MAX_ITEMS = 50


def load(path):
    """Load orders."""
    frame = pd.read_csv(path)
    handler = pick_handler()
    handler(frame)
    return os.path.basename(path)


class OrderService(BaseService):
    """Coordinates orders."""

    retries = 3

    def __init__(self, repo: Repository):
        super().__init__()
        self.repo = repo
        self.cache = Cache()

    def place(self, item: Optional[Item]):
        order = Order(item)
        order.submit()
        item.validate()
        self.repo.save(order)
        self.cache.clear()
        self._audit(order)
        return self.helpers[0](order)

    @classmethod
    def build(cls):
        return cls.create()

    def _audit(self, order):
        pass

    def __check(self):
        pass
`

// Test: Declarations are qualified by module path
func TestPythonParser_Symbols(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguagePython, "shop/services/orders.py", pythonOrders)

	assert.Equal(t, "shop.services.orders", u.Namespace)
	assert.Equal(t, []string{
		"shop.services.orders.MAX_ITEMS",
		"shop.services.orders.load",
		"shop.services.orders.OrderService",
		"shop.services.orders.OrderService.retries",
		"shop.services.orders.OrderService.<init>",
		"shop.services.orders.OrderService.place",
		"shop.services.orders.OrderService.build",
		"shop.services.orders.OrderService._audit",
		"shop.services.orders.OrderService.__check",
	}, qualifiedNames(u))

	assert.Equal(t, extraction.KindConstant, symbol(t, u, "shop.services.orders.MAX_ITEMS").Kind)

	load := symbol(t, u, "shop.services.orders.load")
	assert.Equal(t, extraction.KindFunction, load.Kind)
	assert.Equal(t, "def load(path)", load.Signature)
	require.NotNil(t, load.DocComment)
	assert.Equal(t, "Load orders.", *load.DocComment)

	svc := symbol(t, u, "shop.services.orders.OrderService")
	assert.Equal(t, extraction.KindClass, svc.Kind)
	assert.Equal(t, "class OrderService(BaseService)", svc.Signature)
	require.NotNil(t, svc.DocComment)
	assert.Equal(t, "Coordinates orders.", *svc.DocComment)

	retries := symbol(t, u, "shop.services.orders.OrderService.retries")
	assert.Equal(t, extraction.KindField, retries.Kind)
	assert.Equal(t, "retries", retries.Signature)

	init := symbol(t, u, "shop.services.orders.OrderService.<init>")
	assert.Equal(t, "__init__", init.Name)
	assert.Equal(t, extraction.VisibilityPublic, init.Visibility)
	assert.Equal(t, "shop.services.orders.OrderService", init.Container)

	build := symbol(t, u, "shop.services.orders.OrderService.build")
	assert.Equal(t, []string{"@classmethod"}, build.Annotations)
	assert.Equal(t, []string{"classmethod"}, build.Modifiers)

	assert.Equal(t, extraction.VisibilityProtected, symbol(t, u, "shop.services.orders.OrderService._audit").Visibility)
	assert.Equal(t, extraction.VisibilityPrivate, symbol(t, u, "shop.services.orders.OrderService.__check").Visibility)

	assert.Equal(t, []extraction.InheritanceEdge{
		{Child: "shop.services.orders.OrderService", Parent: "BaseService", Kind: extraction.Extends},
	}, u.Inheritance)
}

// Test: Import forms and relative path resolution
func TestPythonParser_Imports(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguagePython, "shop/services/orders.py", pythonOrders)
	require.Len(t, u.Imports, 6)

	osPath := u.Imports[0]
	assert.Equal(t, "os.path", osPath.ImportedPath)
	assert.True(t, osPath.IsModule)
	assert.Equal(t, "os", osPath.QualifiedPath, "binds its first segment")

	pandas := u.Imports[1]
	assert.Equal(t, "pandas", pandas.ImportedPath)
	require.NotNil(t, pandas.LocalAlias)
	assert.Equal(t, "pd", *pandas.LocalAlias)
	assert.True(t, pandas.IsModule)

	order := u.Imports[2]
	assert.Equal(t, ".models", order.ImportedPath)
	assert.True(t, order.IsRelative)
	require.NotNil(t, order.ImportedSymbol)
	assert.Equal(t, "Order", *order.ImportedSymbol)
	assert.Equal(t, "shop.services.models.Order", order.QualifiedPath)

	buyer := u.Imports[3]
	require.NotNil(t, buyer.LocalAlias)
	assert.Equal(t, "Buyer", *buyer.LocalAlias)
	assert.Equal(t, "shop.services.models.Customer", buyer.QualifiedPath)

	wildcard := u.Imports[4]
	assert.True(t, wildcard.IsWildcard)
	assert.Equal(t, "shop.util", wildcard.QualifiedPath)

	typing := u.Imports[5]
	assert.Equal(t, "typing", typing.ImportedPath)
	assert.False(t, typing.IsRelative)
	assert.Empty(t, typing.QualifiedPath)
}

// Test: Call site receivers and tracked types
func TestPythonParser_CallSites(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguagePython, "shop/services/orders.py", pythonOrders)
	const svc = "shop.services.orders.OrderService"

	readCSV := site(t, u, "read_csv")
	assert.Equal(t, extraction.ReceiverIdentifier, readCSV.Receiver)
	assert.Equal(t, "pd", readCSV.ReceiverText)
	assert.False(t, readCSV.ReceiverIsLocal)
	assert.Equal(t, "pd.read_csv", readCSV.Expression)
	assert.Equal(t, "shop.services.orders.load", readCSV.Caller)
	assert.Empty(t, readCSV.EnclosingType)

	handler := site(t, u, "handler")
	assert.True(t, handler.CalleeIsLocal)

	basename := site(t, u, "basename")
	assert.Equal(t, extraction.ReceiverExpression, basename.Receiver)
	assert.Equal(t, "os.path", basename.ReceiverText)

	superInit := site(t, u, "__init__")
	assert.Equal(t, extraction.ReceiverSuper, superInit.Receiver)
	assert.True(t, superInit.Constructor)
	assert.Equal(t, svc+".<init>", superInit.Caller)

	orderCtor := site(t, u, "Order")
	assert.Equal(t, extraction.ReceiverNone, orderCtor.Receiver)
	assert.Equal(t, 1, orderCtor.ArgumentCount)

	submit := site(t, u, "submit")
	assert.True(t, submit.ReceiverIsLocal)
	assert.Equal(t, "Order", submit.ReceiverType)

	validate := site(t, u, "validate")
	assert.Equal(t, "Item", validate.ReceiverType)

	save := site(t, u, "save")
	assert.Equal(t, extraction.ReceiverSelfField, save.Receiver)
	assert.Equal(t, "repo", save.ReceiverText)
	assert.Equal(t, "Repository", save.ReceiverType)

	clear := site(t, u, "clear")
	assert.Equal(t, "Cache", clear.ReceiverType)

	audit := site(t, u, "_audit")
	assert.Equal(t, extraction.ReceiverSelf, audit.Receiver)
	assert.Equal(t, svc, audit.EnclosingType)

	create := site(t, u, "create")
	assert.Equal(t, extraction.ReceiverScopeSelf, create.Receiver)
	assert.Equal(t, svc+".build", create.Caller)

	var dynamic []extraction.CallSite
	for _, s := range u.CallSites {
		if s.Dynamic {
			dynamic = append(dynamic, s)
		}
	}
	require.Len(t, dynamic, 1)
	assert.Equal(t, "self.helpers[0]", dynamic[0].Expression)
}

// Test: Package __init__ files resolve relative imports against themselves
func TestPythonParser_PackageInit(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguagePython, "shop/__init__.py", "from .orders import load\n")

	assert.Equal(t, "shop", u.Namespace)
	require.Len(t, u.Imports, 1)
	assert.Equal(t, "shop.orders.load", u.Imports[0].QualifiedPath)
}

// Test: Enum and Protocol bases set the symbol kind
func TestPythonParser_ClassKinds(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguagePython, "kinds.py", `from enum import Enum
from typing import Protocol


class Color(Enum):
    RED = 1


class Greeter(Protocol):
    def greet(self) -> str: ...
`)

	assert.Equal(t, extraction.KindEnum, symbol(t, u, "kinds.Color").Kind)
	assert.Equal(t, extraction.KindConstant, symbol(t, u, "kinds.Color.RED").Kind)
	assert.Equal(t, extraction.KindInterface, symbol(t, u, "kinds.Greeter").Kind)
	assert.Equal(t, "def greet(self) -> str", symbol(t, u, "kinds.Greeter.greet").Signature)
}

const pythonDispatch = `from .clients import ApiClient


def run():
    handler()
    client.get("/")


handler = pick_handler()
client = ApiClient()
client.close()
for hook in load_hooks():
    hook()


class Config:
    loader = make_loader()

    def load(self):
        return loader()
`

// Test: Module-level variables bind calls in functions declared before them
func TestPythonParser_ModuleVariables(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguagePython, "app/dispatch.py", pythonDispatch)

	handler := site(t, u, "handler")
	assert.Equal(t, "app.dispatch.run", handler.Caller)
	assert.True(t, handler.CalleeIsLocal)

	get := site(t, u, "get")
	assert.True(t, get.ReceiverIsLocal)
	assert.Equal(t, "ApiClient", get.ReceiverType)

	closeSite := site(t, u, "close")
	assert.Equal(t, extraction.ModuleScope, closeSite.Caller)
	assert.True(t, closeSite.ReceiverIsLocal)
	assert.Equal(t, "ApiClient", closeSite.ReceiverType)

	assert.True(t, site(t, u, "hook").CalleeIsLocal)
	assert.False(t, site(t, u, "pick_handler").CalleeIsLocal)

	// Class attributes are not in scope inside methods.
	loader := site(t, u, "loader")
	assert.Equal(t, "app.dispatch.Config.load", loader.Caller)
	assert.False(t, loader.CalleeIsLocal)
}
