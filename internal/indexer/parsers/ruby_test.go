package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Test Plan for RubyParser:
// - modules qualify nested declarations and the first one is the namespace
// - superclass and include produce inheritance edges
// - require and require_relative are wildcard imports
// - initialize is the <init> constructor; def self.x is static
// - private sections, private :name and attr_* fields
// - self/@ivar/local/Const::Path receivers, Foo.new, bare super and send
// - class << self is reported but its methods are still extracted

const rubyInvoice = `require "json"
require_relative "support/money"

module Billing
  # Issues invoices.
  class Invoice < Base::Record
    include Comparable

    TAX = 0.2

    attr_reader :lines

    def initialize(customer)
      super(customer)
      @customer = customer
      @ledger = Ledger.new
      @lines = []
    end

    # Totals the invoice.
    def total
      sum = lines.sum(&:amount)
      @ledger.record(sum)
      validate
      self.notify(sum)
      Money::Formatter.format(sum)
      send(:audit, sum)
      sum
    end

    def self.build(customer)
      invoice = Invoice.new(customer)
      invoice.total
      self.defaults
    end

    private

    def validate
      raise ArgumentError, "empty" if lines.empty?
    end

    def publish(amount)
      super
    end
  end
end
`

// Test: Classes, members and visibility sections
func TestRubyParser_Symbols(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageRuby, "lib/billing/invoice.rb", rubyInvoice)
	const inv = "Billing.Invoice"

	assert.Equal(t, "Billing", u.Namespace)
	assert.Equal(t, []string{
		inv,
		inv + ".TAX",
		inv + ".lines",
		inv + ".<init>",
		inv + ".total",
		inv + ".build",
		inv + ".validate",
		inv + ".publish",
	}, qualifiedNames(u))

	class := symbol(t, u, inv)
	assert.Equal(t, "Invoice", class.Name)
	assert.Equal(t, "class Invoice < Base::Record", class.Signature)
	require.NotNil(t, class.DocComment)
	assert.Equal(t, "Issues invoices.", *class.DocComment)

	assert.Equal(t, extraction.KindConstant, symbol(t, u, inv+".TAX").Kind)

	lines := symbol(t, u, inv+".lines")
	assert.Equal(t, extraction.KindField, lines.Kind)
	assert.Equal(t, []string{"attr_reader"}, lines.Modifiers)

	init := symbol(t, u, inv+".<init>")
	assert.Equal(t, "initialize", init.Name)
	assert.Equal(t, extraction.VisibilityPrivate, init.Visibility)

	total := symbol(t, u, inv+".total")
	assert.Equal(t, "def total", total.Signature)
	require.NotNil(t, total.DocComment)
	assert.Equal(t, "Totals the invoice.", *total.DocComment)
	assert.Equal(t, extraction.VisibilityPublic, total.Visibility)

	build := symbol(t, u, inv+".build")
	assert.Equal(t, "def self.build(customer)", build.Signature)
	assert.Equal(t, []string{"static"}, build.Modifiers)

	assert.Equal(t, extraction.VisibilityPrivate, symbol(t, u, inv+".validate").Visibility)
	assert.Equal(t, extraction.VisibilityPrivate, symbol(t, u, inv+".publish").Visibility)
}

// Test: require forms and inheritance edges
func TestRubyParser_ImportsAndInheritance(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageRuby, "invoice.rb", rubyInvoice)

	require.Len(t, u.Imports, 2)
	assert.Equal(t, "json", u.Imports[0].ImportedPath)
	assert.True(t, u.Imports[0].IsWildcard)
	assert.False(t, u.Imports[0].IsRelative)
	assert.Equal(t, "support/money", u.Imports[1].ImportedPath)
	assert.True(t, u.Imports[1].IsRelative)

	assert.Equal(t, []extraction.InheritanceEdge{
		{Child: "Billing.Invoice", Parent: "Base.Record", Kind: extraction.Extends},
		{Child: "Billing.Invoice", Parent: "Comparable", Kind: extraction.Implements},
	}, u.Inheritance)
}

// Test: Receiver shapes for Ruby call forms
func TestRubyParser_CallSites(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageRuby, "invoice.rb", rubyInvoice)
	const inv = "Billing.Invoice"

	ledger := site(t, u, "Ledger")
	assert.True(t, ledger.Constructor)
	assert.Equal(t, extraction.ReceiverNone, ledger.Receiver)
	assert.Equal(t, inv+".<init>", ledger.Caller)

	record := site(t, u, "record")
	assert.Equal(t, extraction.ReceiverSelfField, record.Receiver)
	assert.Equal(t, "ledger", record.ReceiverText)
	assert.Equal(t, "Ledger", record.ReceiverType)
	assert.Equal(t, 1, record.ArgumentCount)

	sum := site(t, u, "sum")
	assert.Equal(t, extraction.ReceiverSelfField, sum.Receiver, "attr_reader accessor")
	assert.Equal(t, "lines", sum.ReceiverText)

	validate := site(t, u, "validate")
	assert.Equal(t, extraction.ReceiverNone, validate.Receiver)
	assert.True(t, validate.ImplicitSelf)
	assert.Equal(t, inv+".total", validate.Caller)

	notify := site(t, u, "notify")
	assert.Equal(t, extraction.ReceiverSelf, notify.Receiver)

	format := site(t, u, "format")
	assert.Equal(t, extraction.ReceiverIdentifier, format.Receiver)
	assert.True(t, format.ReceiverIsModule)
	assert.Equal(t, "Money::Formatter", format.ReceiverText)

	assert.True(t, site(t, u, "send").Dynamic)

	ctor := site(t, u, "Invoice")
	assert.True(t, ctor.Constructor)
	assert.Equal(t, 1, ctor.ArgumentCount)

	total := site(t, u, "total")
	assert.True(t, total.ReceiverIsLocal)
	assert.Equal(t, "Invoice", total.ReceiverType)

	defaults := site(t, u, "defaults")
	assert.Equal(t, extraction.ReceiverScopeSelf, defaults.Receiver, "self inside def self.build")

	assert.True(t, site(t, u, "raise").ImplicitSelf)

	var supers, dynamic []extraction.CallSite
	for _, s := range u.CallSites {
		if s.Receiver == extraction.ReceiverSuper {
			supers = append(supers, s)
		}
		if s.Dynamic {
			dynamic = append(dynamic, s)
		}
	}
	require.Len(t, supers, 2)
	assert.True(t, supers[0].Constructor)
	assert.Equal(t, 1, supers[0].ArgumentCount)
	assert.Equal(t, inv+".<init>", supers[0].Caller)
	assert.Equal(t, "publish", supers[1].Member)
	assert.False(t, supers[1].Constructor)
	assert.Len(t, dynamic, 1)
}

// Test: Nested modules, class << self and private :name
func TestRubyParser_ModulesAndSingletonClass(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageRuby, "acme.rb", `module Acme
  module Util
    def self.slug(text)
      text.downcase
    end
  end

  class Report
    class << self
      def generate
        "report"
      end
    end

    def render; end

    def helper; end
    private :helper
  end
end

def main
  Acme::Report.generate
end
`)

	assert.Equal(t, "Acme", u.Namespace)
	assert.Equal(t, []string{
		"Acme.Util.slug",
		"Acme.Report",
		"Acme.Report.generate",
		"Acme.Report.render",
		"Acme.Report.helper",
		"main",
	}, qualifiedNames(u))
	assert.Equal(t, []string{"singleton class"}, constructs(u))

	slug := symbol(t, u, "Acme.Util.slug")
	assert.Equal(t, extraction.KindFunction, slug.Kind)
	assert.Equal(t, []string{"static"}, slug.Modifiers)

	assert.Equal(t, []string{"static"}, symbol(t, u, "Acme.Report.generate").Modifiers)
	assert.Equal(t, extraction.VisibilityPrivate, symbol(t, u, "Acme.Report.helper").Visibility)
	assert.Equal(t, extraction.VisibilityPublic, symbol(t, u, "Acme.Report.render").Visibility)
	assert.Equal(t, extraction.KindFunction, symbol(t, u, "main").Kind)

	downcase := site(t, u, "downcase")
	assert.True(t, downcase.ReceiverIsLocal)
	assert.Equal(t, "Acme.Util.slug", downcase.Caller)

	generate := site(t, u, "generate")
	assert.True(t, generate.ReceiverIsModule)
	assert.Equal(t, "main", generate.Caller)
}
