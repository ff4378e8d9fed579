package parsers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-scribe/internal/indexer/extraction"
)

// Test Plan for JavaParser:
// - package becomes the namespace and prefixes every qualified name
// - single-type, on-demand and static imports are recorded
// - classes carry visibility, javadoc, annotations and a body-free signature
// - extends and implements produce raw inheritance edges
// - overloads get "#N" suffixes; constructors use the <init> member name
// - interface methods without a body are public and abstract
// - this./super/field/local/bare receivers produce the matching call site shapes
// - syntax errors and annotation types are reported, not fatal

const javaCalculator = `package com.acme.calc;

import java.util.List;
import java.util.*;
import static java.lang.Math.max;

/**
 * Basic arithmetic.
 */
@Service
public class Calculator extends Base implements Adder, Multiplier {
    private final Repo repo;
    public static final int LIMIT = 10;

    public Calculator(Repo repo) {
        super(repo);
        this.repo = repo;
    }

    public int add(int a, int b) {
        return this.multiply(a, 1) + b;
    }

    int multiply(int a, int b) {
        Helper h = new Helper();
        h.assist(a);
        repo.save(a);
        this.repo.flush();
        log(a);
        return max(a, b);
    }

    private void log(int v) {}
    private void log(String v) {}
}

interface Adder {
    int add(int a, int b);
}
`

// Test: Declarations are qualified by package and enclosing type
func TestJavaParser_Symbols(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageJava, "src/Calculator.java", javaCalculator)

	assert.Equal(t, extraction.LanguageJava, u.Language)
	assert.Equal(t, "com.acme.calc", u.Namespace)
	assert.Equal(t, []string{
		"com.acme.calc.Calculator",
		"com.acme.calc.Calculator.repo",
		"com.acme.calc.Calculator.LIMIT",
		"com.acme.calc.Calculator.<init>",
		"com.acme.calc.Calculator.add",
		"com.acme.calc.Calculator.multiply",
		"com.acme.calc.Calculator.log",
		"com.acme.calc.Calculator.log#2",
		"com.acme.calc.Adder",
		"com.acme.calc.Adder.add",
	}, qualifiedNames(u))

	calc := symbol(t, u, "com.acme.calc.Calculator")
	assert.Equal(t, extraction.KindClass, calc.Kind)
	assert.Equal(t, extraction.VisibilityPublic, calc.Visibility)
	assert.Equal(t, "public class Calculator extends Base implements Adder, Multiplier", calc.Signature)
	assert.Equal(t, []string{"@Service"}, calc.Annotations)
	require.NotNil(t, calc.DocComment)
	assert.Equal(t, "Basic arithmetic.", *calc.DocComment)
	assert.Equal(t, 10, calc.Span.StartLine, "annotations belong to the declaration")
	assert.Equal(t, "src/Calculator.java", calc.Span.File)

	repo := symbol(t, u, "com.acme.calc.Calculator.repo")
	assert.Equal(t, extraction.KindField, repo.Kind)
	assert.Equal(t, extraction.VisibilityPrivate, repo.Visibility)
	assert.Equal(t, []string{"final"}, repo.Modifiers)
	assert.Equal(t, "com.acme.calc.Calculator", repo.Container)

	assert.Equal(t, extraction.KindConstant, symbol(t, u, "com.acme.calc.Calculator.LIMIT").Kind)

	ctor := symbol(t, u, "com.acme.calc.Calculator.<init>")
	assert.Equal(t, extraction.KindMethod, ctor.Kind)
	assert.Equal(t, "Calculator", ctor.Name)

	multiply := symbol(t, u, "com.acme.calc.Calculator.multiply")
	assert.Equal(t, extraction.VisibilityPackagePrivate, multiply.Visibility)
	assert.Equal(t, "int multiply(int a, int b)", multiply.Signature)

	adderAdd := symbol(t, u, "com.acme.calc.Adder.add")
	assert.Equal(t, extraction.VisibilityPublic, adderAdd.Visibility)
	assert.Contains(t, adderAdd.Modifiers, "abstract")
	assert.Equal(t, extraction.KindInterface, symbol(t, u, "com.acme.calc.Adder").Kind)
}

// Test: Imports and inheritance edges are recorded as written
func TestJavaParser_ImportsAndInheritance(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageJava, "Calculator.java", javaCalculator)

	require.Len(t, u.Imports, 3)
	assert.Equal(t, "java.util.List", u.Imports[0].ImportedPath)
	assert.False(t, u.Imports[0].IsWildcard)
	assert.Equal(t, "java.util", u.Imports[1].ImportedPath)
	assert.True(t, u.Imports[1].IsWildcard)
	assert.Equal(t, "java.lang.Math.max", u.Imports[2].ImportedPath)
	assert.Equal(t, 5, u.Imports[2].Line)

	assert.Equal(t, []extraction.InheritanceEdge{
		{Child: "com.acme.calc.Calculator", Parent: "Base", Kind: extraction.Extends},
		{Child: "com.acme.calc.Calculator", Parent: "Adder", Kind: extraction.Implements},
		{Child: "com.acme.calc.Calculator", Parent: "Multiplier", Kind: extraction.Implements},
	}, u.Inheritance)
}

// Test: Call sites describe their receivers
func TestJavaParser_CallSites(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageJava, "Calculator.java", javaCalculator)

	superCall := u.CallSites[0]
	assert.Equal(t, extraction.ReceiverSuper, superCall.Receiver)
	assert.True(t, superCall.Constructor)
	assert.Equal(t, "com.acme.calc.Calculator.<init>", superCall.Caller)
	assert.Equal(t, 1, superCall.ArgumentCount)

	multiply := site(t, u, "multiply")
	assert.Equal(t, extraction.ReceiverSelf, multiply.Receiver)
	assert.Equal(t, "this.multiply", multiply.Expression)
	assert.Equal(t, "com.acme.calc.Calculator.add", multiply.Caller)
	assert.Equal(t, "com.acme.calc.Calculator", multiply.EnclosingType)
	assert.Equal(t, 2, multiply.ArgumentCount)

	helper := site(t, u, "Helper")
	assert.True(t, helper.Constructor)
	assert.Equal(t, extraction.ReceiverNone, helper.Receiver)
	assert.Equal(t, "new Helper", helper.Expression)

	assist := site(t, u, "assist")
	assert.Equal(t, extraction.ReceiverIdentifier, assist.Receiver)
	assert.True(t, assist.ReceiverIsLocal)
	assert.Equal(t, "Helper", assist.ReceiverType)

	save := site(t, u, "save")
	assert.Equal(t, extraction.ReceiverSelfField, save.Receiver)
	assert.Equal(t, "repo", save.ReceiverText)
	assert.Equal(t, "Repo", save.ReceiverType)

	flush := site(t, u, "flush")
	assert.Equal(t, extraction.ReceiverSelfField, flush.Receiver)
	assert.Equal(t, "Repo", flush.ReceiverType)

	logCall := site(t, u, "log")
	assert.Equal(t, extraction.ReceiverNone, logCall.Receiver)
	assert.True(t, logCall.ImplicitSelf)

	maxCall := site(t, u, "max")
	assert.Equal(t, 2, maxCall.ArgumentCount)
	assert.Equal(t, "com.acme.calc.Calculator.multiply", maxCall.Caller)
}

// Test: Records expose their components as fields
func TestJavaParser_Record(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageJava, "Point.java", `public record Point(int x, Label label) {
    String describe() { return label.render(); }
}
`)

	assert.Equal(t, []string{"Point", "Point.x", "Point.label", "Point.describe"}, qualifiedNames(u))
	render := site(t, u, "render")
	assert.Equal(t, extraction.ReceiverSelfField, render.Receiver)
	assert.Equal(t, "Label", render.ReceiverType)
}

// Test: Unsupported declarations and syntax errors are diagnostics
func TestJavaParser_Unsupported(t *testing.T) {
	t.Parallel()

	u := extract(t, extraction.LanguageJava, "Marker.java", `@interface Marker {}

class Ok {
    void run() {}
}
`)
	assert.Contains(t, constructs(u), "annotation type declaration")
	assert.Contains(t, qualifiedNames(u), "Ok.run")

	broken := extract(t, extraction.LanguageJava, "Broken.java", `class Broken {
    void f( {
}
`)
	assert.NotEmpty(t, broken.Diagnostics.Unsupported)
}
