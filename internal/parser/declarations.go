package parser

import (
	"github.com/ChAoSUnItY/Yakou/internal/ast"
	"github.com/ChAoSUnItY/Yakou/internal/diagnostics"
	"github.com/ChAoSUnItY/Yakou/internal/token"
)

// ParseFile parses one compilation unit: File = [Package] {Use} Class [Impl].
func (p *Parser) ParseFile(path string) *ast.File {
	pos := p.cur.Pos

	var pkg *ast.Package
	if p.curIs(token.KW_MOD) {
		pkg = p.parsePackage()
		p.advance()
	}

	var usages []*ast.Usage
	for p.curIs(token.KW_USE) {
		usages = append(usages, p.parseUse()...)
		p.advance()
	}

	class := p.parseClass(pkg, usages)
	p.advance()

	if p.curIs(token.KW_IMPL) {
		p.parseImpl(class)
		p.advance()
	}

	return &ast.File{NodeBase: ast.NodeBase{P: pos}, Path: path, Class: class}
}

// parsePackage parses "mod" QualifiedName, with cur on KW_MOD.
func (p *Parser) parsePackage() *ast.Package {
	pos := p.cur.Pos
	path := p.parseDottedName()
	return &ast.Package{NodeBase: ast.NodeBase{P: pos}, Path: path}
}

// parseDottedName parses Name {"." Name}, leaving cur on the last
// consumed identifier.
func (p *Parser) parseDottedName() []string {
	if !p.expect(token.IDENT) {
		return nil
	}
	names := []string{p.cur.Literal}
	for p.peekIs(token.DOT) {
		p.advance()
		if !p.expect(token.IDENT) {
			break
		}
		names = append(names, p.cur.Literal)
	}
	return names
}

// parseUse parses "use" UsageRef ";"?, with cur on KW_USE.
func (p *Parser) parseUse() []*ast.Usage {
	p.advance()
	usages := p.parseUsageRef(nil)
	if p.peekIs(token.SEMI) {
		p.advance()
	}
	return usages
}

// parseUsageRef parses UsageRef = Name { "::" Name } [ "::" "{" UsageRef
// { "," UsageRef } "}" ] [ "as" Name ], flattening grouped imports into
// one Usage per leaf. cur starts on the first Name.
func (p *Parser) parseUsageRef(prefix []string) []*ast.Usage {
	pos := p.cur.Pos
	if !p.curIs(token.IDENT) {
		p.noPrefixParseFnError()
		return nil
	}
	path := append(append([]string{}, prefix...), p.cur.Literal)

	for p.peekIs(token.COLONCOLON) {
		if p.peekAfterIsGroup() {
			p.advance() // cur = ::
			p.advance() // cur = {
			p.advance() // cur = first member of group
			var out []*ast.Usage
			for {
				out = append(out, p.parseUsageRef(path)...)
				if p.peekIs(token.COMMA) {
					p.advance()
					p.advance()
					continue
				}
				break
			}
			p.expect(token.RBRACE)
			return out
		}
		p.advance() // cur = ::
		if !p.expect(token.IDENT) {
			break
		}
		path = append(path, p.cur.Literal)
	}

	alias := ""
	if p.peekIs(token.KW_AS) {
		p.advance()
		if p.expect(token.IDENT) {
			alias = p.cur.Literal
		}
	}

	ref := ast.Reference{Path: path, Name: path[len(path)-1], P: pos}
	return []*ast.Usage{{NodeBase: ast.NodeBase{P: pos}, Ref: ref, Alias: alias}}
}

// peekAfterIsGroup reports whether the token following peek ("::") is
// "{", i.e. the next segment opens a grouped usage list rather than a
// plain path component.
func (p *Parser) peekAfterIsGroup() bool {
	after := p.stream.Peek(1)
	return len(after) > 0 && after[0].Kind == token.LBRACE
}

func accessorFromKind(k token.Kind) ast.Accessor {
	switch k {
	case token.KW_PUB:
		return ast.AccPub
	case token.KW_PROT:
		return ast.AccProt
	case token.KW_INTL:
		return ast.AccIntl
	case token.KW_PRIV:
		return ast.AccPriv
	default:
		return ast.AccPub
	}
}

// parseAccessor consumes a leading accessor keyword if present, warning
// on redundant explicit "pub" per spec §4.1, and returns the accessor
// (default AccPub) with cur left on the last consumed token.
func (p *Parser) parseAccessor() ast.Accessor {
	if !token.IsAccessor(p.cur.Kind) {
		return ast.AccPub
	}
	acc := accessorFromKind(p.cur.Kind)
	if p.cur.Kind == token.KW_PUB {
		p.sink.Add(diagnostics.NewWarning(diagnostics.PhaseParser, diagnostics.WRedundantPub, p.cur.Pos))
	}
	p.advance()
	return acc
}

// parseClass parses [Accessor] "class" Name [ "{" {FieldBlock} "}" ],
// with cur on the first token of the (optional) accessor or "class".
func (p *Parser) parseClass(pkg *ast.Package, usages []*ast.Usage) *ast.Class {
	pos := p.cur.Pos
	accessor := p.parseAccessor()

	if !p.curIs(token.KW_CLASS) {
		p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.cur.Pos, "'class'", string(p.cur.Kind)))
	}
	if !p.expect(token.IDENT) {
		return &ast.Class{NodeBase: ast.NodeBase{P: pos}, Pkg: pkg, Usages: usages, Accessor: accessor}
	}
	name := p.cur.Literal

	class := &ast.Class{NodeBase: ast.NodeBase{P: pos}, Pkg: pkg, Usages: usages, Accessor: accessor, Name: name}

	if p.peekIs(token.LBRACE) {
		p.advance() // cur = {
		p.advance() // cur = first token inside class body (or })
		p.parseFieldBlocks(class)
		if !p.curIs(token.RBRACE) {
			p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SMissingBrace, p.cur.Pos, "}"))
		}
	}
	return class
}

// parseFieldBlocks parses the repeated "[Accessor] [mut] ':'" headers
// and the Name ':' Type declarations that follow each, until '}'/EOF.
// Duplicate (access, mut) headers within one class are reported per
// spec §4.1.
func (p *Parser) parseFieldBlocks(class *ast.Class) {
	seenAcc := make(map[ast.Accessor]map[bool]bool)

	// accessor/mut persist across iterations: a header line governs every
	// field declaration that follows it, until the next header.
	accessor := ast.AccPub
	mut := false

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		headerPos := p.cur.Pos

		if token.IsAccessor(p.cur.Kind) || p.curIs(token.KW_MUT) {
			accessor = ast.AccPub
			mut = false
			if token.IsAccessor(p.cur.Kind) {
				accessor = accessorFromKind(p.cur.Kind)
				if p.cur.Kind == token.KW_PUB {
					p.sink.Add(diagnostics.NewWarning(diagnostics.PhaseParser, diagnostics.WRedundantPub, p.cur.Pos))
				}
				if p.peekIs(token.KW_MUT) {
					p.advance()
				}
			}
			if p.curIs(token.KW_MUT) {
				mut = true
			}
			if !p.expect(token.COLON) {
				p.advance()
				continue
			}

			if seenAcc[accessor] == nil {
				seenAcc[accessor] = make(map[bool]bool)
			}
			if seenAcc[accessor][mut] {
				p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DDuplicateAccessBlock, headerPos, accessorLabel(accessor)+mutLabel(mut)))
			}
			seenAcc[accessor][mut] = true

			p.advance()
			continue
		}

		if p.curIs(token.KW_COMP) {
			p.parseCompanionFieldBlock(class)
			p.advance()
			continue
		}

		if p.curIs(token.IDENT) {
			p.parseFieldDecl(class, accessor, mut, false)
			p.advance()
			continue
		}

		p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.cur.Pos, "a field declaration", string(p.cur.Kind)))
		p.advance()
	}
}

func accessorLabel(a ast.Accessor) string {
	switch a {
	case ast.AccPub:
		return "pub"
	case ast.AccProt:
		return "prot"
	case ast.AccIntl:
		return "intl"
	default:
		return "priv"
	}
}

func mutLabel(mut bool) string {
	if mut {
		return " mut"
	}
	return ""
}

// parseCompanionFieldBlock parses a "comp { FieldBlock* }" group nested
// in a class body; its members are marked Comp: true.
func (p *Parser) parseCompanionFieldBlock(class *ast.Class) {
	if !p.expect(token.LBRACE) {
		return
	}
	p.advance()

	// accessor/mut persist across iterations, same as parseFieldBlocks.
	accessor := ast.AccPub
	mut := false

	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		if token.IsAccessor(p.cur.Kind) || p.curIs(token.KW_MUT) {
			accessor = ast.AccPub
			mut = false
			if token.IsAccessor(p.cur.Kind) {
				accessor = accessorFromKind(p.cur.Kind)
				if p.peekIs(token.KW_MUT) {
					p.advance()
				}
			}
			if p.curIs(token.KW_MUT) {
				mut = true
			}
			if !p.expect(token.COLON) {
				p.advance()
				continue
			}
			p.advance()
			continue
		}
		if p.curIs(token.KW_COMP) {
			p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DNestedCompanion, p.cur.Pos))
			p.advance()
			continue
		}
		if p.curIs(token.IDENT) {
			p.parseFieldDecl(class, accessor, mut, true)
			p.advance()
			continue
		}
		p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.cur.Pos, "a field declaration", string(p.cur.Kind)))
		p.advance()
	}
}

// parseFieldDecl parses "Name ':' Type" with cur on Name. comp marks a
// field declared inside a class-body "comp { ... }" block.
func (p *Parser) parseFieldDecl(class *ast.Class, accessor ast.Accessor, mut bool, comp bool) {
	pos := p.cur.Pos
	name := p.cur.Literal
	if !p.expect(token.COLON) {
		return
	}
	p.advance()
	typeRef := p.parseTypeRef()
	class.Fields = append(class.Fields, &ast.Field{
		NodeBase: ast.NodeBase{P: pos},
		Owner:    class,
		Accessor: accessor,
		Mut:      mut,
		Comp:     comp,
		Name:     name,
		TypeRef:  typeRef,
	})
}

// parseTypeRef parses a reference followed by any number of "[]"
// suffixes, cur starting on the first identifier of the reference.
func (p *Parser) parseTypeRef() ast.TypeRef {
	pos := p.cur.Pos
	path := p.parseColonColonName()
	depth := 0
	for p.peekIs(token.LBRACKET) && p.peekAfterBracketIsCloseBracket() {
		p.advance() // cur = [
		p.advance() // cur = ]
		depth++
	}
	ref := ast.Reference{Path: path, Name: path[len(path)-1], P: pos}
	return ast.TypeRef{Ref: ref, Depth: depth}
}

func (p *Parser) peekAfterBracketIsCloseBracket() bool {
	after := p.stream.Peek(1)
	return len(after) > 0 && after[0].Kind == token.RBRACKET
}

// parseColonColonName parses Name { "::" Name }, cur starting on Name,
// ending with cur on the last consumed identifier.
func (p *Parser) parseColonColonName() []string {
	if !p.curIs(token.IDENT) {
		p.noPrefixParseFnError()
		return []string{""}
	}
	names := []string{p.cur.Literal}
	for p.peekIs(token.COLONCOLON) {
		p.advance()
		if !p.expect(token.IDENT) {
			break
		}
		names = append(names, p.cur.Literal)
	}
	return names
}

// parseImpl parses "impl" Name "{" {MemberBlock} "}", with cur on KW_IMPL.
func (p *Parser) parseImpl(class *ast.Class) {
	if !p.expect(token.IDENT) {
		return
	}
	if class != nil && p.cur.Literal != class.Name {
		p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.cur.Pos, class.Name, p.cur.Literal))
	}
	if !p.expect(token.LBRACE) {
		return
	}
	p.advance()
	p.parseMemberBlocks(class, false)
	if !p.curIs(token.RBRACE) {
		p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SMissingBrace, p.cur.Pos, "}"))
	}
}

// modifiers is the parsed modifier set preceding a member declaration.
type modifiers struct {
	accessor ast.Accessor
	mut      bool
	comp     bool
}

// parseModifiers consumes a modifier sequence drawn from {accessor,
// mut, comp}, reporting invalid ordering (access after mut), with cur
// ending on the first non-modifier token (the member's own "new"/"fn",
// or the "{" that follows "comp"), mirroring parseFieldBlocks' cur-based
// dispatch rather than looking ahead through peek. Repeated modifiers
// are not reported; a later accessor replaces an earlier one.
func (p *Parser) parseModifiers() modifiers {
	m := modifiers{accessor: ast.AccPub}
	sawMut := false
	for {
		switch {
		case token.IsAccessor(p.cur.Kind):
			if sawMut {
				p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DInvalidModifierOrder, p.cur.Pos, "accessor", "mut"))
			}
			m.accessor = accessorFromKind(p.cur.Kind)
			if p.cur.Kind == token.KW_PUB {
				p.sink.Add(diagnostics.NewWarning(diagnostics.PhaseParser, diagnostics.WRedundantPub, p.cur.Pos))
			}
			p.advance()
		case p.curIs(token.KW_MUT):
			sawMut = true
			m.mut = true
			p.advance()
		case p.curIs(token.KW_COMP):
			m.comp = true
			p.advance()
		default:
			return m
		}
	}
}

// parseMemberBlocks parses the body of an impl block: modifier-prefixed
// "new"/"fn" declarations and nested "comp { ... }" groups, until '}'.
// insideComp marks a recursive call parsing a companion group's body.
// Callers position cur directly on the first member token, mirroring
// parseFieldBlocks.
func (p *Parser) parseMemberBlocks(class *ast.Class, insideComp bool) {
	for !p.curIs(token.RBRACE) && !p.curIs(token.EOF) {
		m := p.parseModifiers()

		if m.comp {
			if insideComp {
				p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DNestedCompanion, p.cur.Pos))
			}
			if !p.curIs(token.LBRACE) {
				p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.cur.Pos, "'{'", string(p.cur.Kind)))
				p.advance()
				continue
			}
			p.advance()
			p.parseMemberBlocks(class, true)
			if !p.curIs(token.RBRACE) {
				p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SMissingBrace, p.cur.Pos, "}"))
			}
			p.advance()
			continue
		}

		// Every member declared inside a comp group is a companion member.
		if insideComp {
			m.comp = true
		}

		switch {
		case p.curIs(token.KW_NEW):
			p.parseConstructorDecl(class, m)
		case p.curIs(token.KW_FN):
			p.parseFunctionDecl(class, m)
		default:
			p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.SUnexpectedToken, p.cur.Pos, "'new' or 'fn'", string(p.cur.Kind)))
		}
		p.advance()
	}
}

// parseParameters parses "(" [Parameter {"," Parameter}] ")", cur
// starting on "(", ending with cur on ")".
func (p *Parser) parseParameters() []*ast.Parameter {
	var params []*ast.Parameter
	if p.peekIs(token.RPAREN) {
		p.advance()
		return params
	}
	p.advance()
	seen := make(map[string]bool)
	for {
		pos := p.cur.Pos
		mut := false
		if p.curIs(token.KW_MUT) {
			mut = true
			p.advance()
		}
		name := p.cur.Literal
		if !p.expect(token.COLON) {
			break
		}
		p.advance()
		typeRef := p.parseTypeRef()
		if seen[name] {
			p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DDuplicateParam, pos, name))
		}
		seen[name] = true
		params = append(params, &ast.Parameter{NodeBase: ast.NodeBase{P: pos}, Mut: mut, Name: name, TypeRef: typeRef})
		if p.peekIs(token.COMMA) {
			p.advance()
			p.advance()
			continue
		}
		break
	}
	p.expect(token.RPAREN)
	return params
}

// parseConstructorDecl parses "new" "(" Parameters ")" "{" Statements
// "}", cur on KW_NEW.
func (p *Parser) parseConstructorDecl(class *ast.Class, m modifiers) {
	pos := p.cur.Pos
	if m.comp {
		p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DConstructorInComp, pos))
	}
	if !p.expect(token.LPAREN) {
		return
	}
	params := p.parseParameters()
	if !p.expect(token.LBRACE) {
		return
	}
	stmts := p.parseBlockBody()
	for _, existing := range class.Constructors {
		if sameParamShape(existing.Params, params) {
			p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DDuplicateConstructor, pos))
			break
		}
	}
	class.Constructors = append(class.Constructors, &ast.Constructor{
		NodeBase:   ast.NodeBase{P: pos},
		Owner:      class,
		Accessor:   m.accessor,
		Params:     params,
		Statements: stmts,
	})
}

// parseFunctionDecl parses "fn" Name "(" Parameters ")" [ ":" Type ]
// "{" Statements "}", cur on KW_FN.
func (p *Parser) parseFunctionDecl(class *ast.Class, m modifiers) {
	pos := p.cur.Pos
	if !p.expect(token.IDENT) {
		return
	}
	name := p.cur.Literal
	if !p.expect(token.LPAREN) {
		return
	}
	params := p.parseParameters()

	var retRef *ast.TypeRef
	if p.peekIs(token.COLON) {
		p.advance()
		p.advance()
		tr := p.parseTypeRef()
		retRef = &tr
	}

	if !p.expect(token.LBRACE) {
		return
	}
	stmts := p.parseBlockBody()

	for _, existing := range class.Functions {
		if existing.Name == name && sameParamShape(existing.Params, params) {
			p.sink.Add(diagnostics.NewError(diagnostics.PhaseParser, diagnostics.DDuplicateFunction, pos, name))
			break
		}
	}

	class.Functions = append(class.Functions, &ast.Function{
		NodeBase:      ast.NodeBase{P: pos},
		Owner:         class,
		Accessor:      m.accessor,
		Mut:           m.mut,
		Comp:          m.comp,
		Name:          name,
		Params:        params,
		ReturnTypeRef: retRef,
		Statements:    stmts,
	})
}

func sameParamShape(a, b []*ast.Parameter) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].TypeRef.Ref.String() != b[i].TypeRef.Ref.String() || a[i].TypeRef.Depth != b[i].TypeRef.Depth {
			return false
		}
	}
	return true
}
