package texlayout

// atomClass is the TeX math class of an atom. It drives inter-atom spacing.
type atomClass int

const (
	classOrd atomClass = iota
	classOp
	classBin
	classRel
	classOpen
	classClose
	classPunct
	classInner
	classNone // spaces and kerns
)

type symbol struct {
	text  string
	class atomClass
	style Style
}

var greek = map[string]string{
	"alpha": "α", "beta": "β", "gamma": "γ", "delta": "δ", "epsilon": "ϵ",
	"varepsilon": "ε", "zeta": "ζ", "eta": "η", "theta": "θ", "vartheta": "ϑ",
	"iota": "ι", "kappa": "κ", "lambda": "λ", "mu": "μ", "nu": "ν", "xi": "ξ",
	"omicron": "ο", "pi": "π", "varpi": "ϖ", "rho": "ρ", "varrho": "ϱ",
	"sigma": "σ", "varsigma": "ς", "tau": "τ", "upsilon": "υ", "phi": "ϕ",
	"varphi": "φ", "chi": "χ", "psi": "ψ", "omega": "ω",
}

var upperGreek = map[string]string{
	"Gamma": "Γ", "Delta": "Δ", "Theta": "Θ", "Lambda": "Λ", "Xi": "Ξ",
	"Pi": "Π", "Sigma": "Σ", "Upsilon": "Υ", "Phi": "Φ", "Psi": "Ψ", "Omega": "Ω",
}

var symbols = map[string]symbol{
	// binary operators
	"pm": {"±", classBin, Regular}, "mp": {"∓", classBin, Regular},
	"times": {"×", classBin, Regular}, "div": {"÷", classBin, Regular},
	"cdot": {"⋅", classBin, Regular}, "ast": {"∗", classBin, Regular},
	"star": {"⋆", classBin, Regular}, "circ": {"∘", classBin, Regular},
	"bullet": {"∙", classBin, Regular}, "oplus": {"⊕", classBin, Regular},
	"ominus": {"⊖", classBin, Regular}, "otimes": {"⊗", classBin, Regular},
	"cup": {"∪", classBin, Regular}, "cap": {"∩", classBin, Regular},
	"wedge": {"∧", classBin, Regular}, "land": {"∧", classBin, Regular},
	"vee": {"∨", classBin, Regular}, "lor": {"∨", classBin, Regular},
	"setminus": {"∖", classBin, Regular}, "backslash": {"\\", classOrd, Regular},

	// relations
	"leq": {"≤", classRel, Regular}, "le": {"≤", classRel, Regular},
	"geq": {"≥", classRel, Regular}, "ge": {"≥", classRel, Regular},
	"neq": {"≠", classRel, Regular}, "ne": {"≠", classRel, Regular},
	"approx": {"≈", classRel, Regular}, "equiv": {"≡", classRel, Regular},
	"sim": {"∼", classRel, Regular}, "simeq": {"≃", classRel, Regular},
	"cong": {"≅", classRel, Regular}, "propto": {"∝", classRel, Regular},
	"ll": {"≪", classRel, Regular}, "gg": {"≫", classRel, Regular},
	"in": {"∈", classRel, Regular}, "notin": {"∉", classRel, Regular},
	"ni": {"∋", classRel, Regular}, "subset": {"⊂", classRel, Regular},
	"supset": {"⊃", classRel, Regular}, "subseteq": {"⊆", classRel, Regular},
	"supseteq": {"⊇", classRel, Regular}, "perp": {"⊥", classRel, Regular},
	"parallel": {"∥", classRel, Regular}, "mid": {"∣", classRel, Regular},
	"to": {"→", classRel, Regular}, "rightarrow": {"→", classRel, Regular},
	"leftarrow": {"←", classRel, Regular}, "gets": {"←", classRel, Regular},
	"leftrightarrow": {"↔", classRel, Regular}, "uparrow": {"↑", classRel, Regular},
	"downarrow": {"↓", classRel, Regular}, "mapsto": {"↦", classRel, Regular},
	"Rightarrow": {"⇒", classRel, Regular}, "Leftarrow": {"⇐", classRel, Regular},
	"Leftrightarrow": {"⇔", classRel, Regular}, "implies": {"⟹", classRel, Regular},
	"iff": {"⟺", classRel, Regular}, "longrightarrow": {"⟶", classRel, Regular},
	"vdash": {"⊢", classRel, Regular}, "models": {"⊨", classRel, Regular},

	// ordinary symbols
	"infty": {"∞", classOrd, Regular}, "partial": {"∂", classOrd, Regular},
	"nabla": {"∇", classOrd, Regular}, "forall": {"∀", classOrd, Regular},
	"exists": {"∃", classOrd, Regular}, "emptyset": {"∅", classOrd, Regular},
	"varnothing": {"∅", classOrd, Regular}, "neg": {"¬", classOrd, Regular},
	"lnot": {"¬", classOrd, Regular}, "angle": {"∠", classOrd, Regular},
	"triangle": {"△", classOrd, Regular}, "hbar": {"ℏ", classOrd, Italic},
	"ell": {"ℓ", classOrd, Italic}, "Re": {"ℜ", classOrd, Regular},
	"Im": {"ℑ", classOrd, Regular}, "aleph": {"ℵ", classOrd, Regular},
	"prime": {"′", classOrd, Regular}, "degree": {"°", classOrd, Regular},
	"ldots": {"…", classInner, Regular}, "dots": {"…", classInner, Regular},
	"cdots": {"⋯", classInner, Regular}, "vdots": {"⋮", classOrd, Regular},
	"ddots": {"⋱", classInner, Regular}, "top": {"⊤", classOrd, Regular},
	"bot": {"⊥", classOrd, Regular}, "dagger": {"†", classBin, Regular},
	"S": {"§", classOrd, Regular}, "P": {"¶", classOrd, Regular},

	// punctuation and escaped characters
	"colon": {":", classPunct, Regular}, "{": {"{", classOpen, Regular},
	"}": {"}", classClose, Regular}, "%": {"%", classOrd, Regular},
	"$": {"$", classOrd, Regular}, "#": {"#", classOrd, Regular},
	"&": {"&", classOrd, Regular}, "_": {"_", classOrd, Regular},
	"|": {"‖", classOrd, Regular},
	"langle": {"⟨", classOpen, Regular}, "rangle": {"⟩", classClose, Regular},
	"lbrace": {"{", classOpen, Regular}, "rbrace": {"}", classClose, Regular},
	"lfloor": {"⌊", classOpen, Regular}, "rfloor": {"⌋", classClose, Regular},
	"lceil": {"⌈", classOpen, Regular}, "rceil": {"⌉", classClose, Regular},
	"vert": {"|", classOrd, Regular}, "Vert": {"‖", classOrd, Regular},
}

// functions are set upright as operators; limits marks those whose
// scripts go above and below in display style.
var functions = map[string]bool{
	"sin": false, "cos": false, "tan": false, "cot": false, "sec": false, "csc": false,
	"arcsin": false, "arccos": false, "arctan": false, "sinh": false, "cosh": false,
	"tanh": false, "coth": false, "exp": false, "log": false, "ln": false, "lg": false,
	"arg": false, "deg": false, "dim": false, "ker": false, "hom": false,
	"lim": true, "liminf": true, "limsup": true, "max": true, "min": true,
	"sup": true, "inf": true, "det": true, "gcd": true, "Pr": true,
}

// bigOps are large operators that take limits in display style.
var bigOps = map[string]struct {
	text   string
	limits bool
}{
	"sum": {"∑", true}, "prod": {"∏", true}, "coprod": {"∐", true},
	"bigcup": {"⋃", true}, "bigcap": {"⋂", true}, "bigoplus": {"⨁", true},
	"bigotimes": {"⨂", true}, "bigvee": {"⋁", true}, "bigwedge": {"⋀", true},
	"int": {"∫", false}, "iint": {"∬", false}, "iiint": {"∭", false},
	"oint": {"∮", false},
}

// spaces in em.
var spaces = map[string]float64{
	",": 3.0 / 18, "thinspace": 3.0 / 18,
	":": 4.0 / 18, ">": 4.0 / 18, "medspace": 4.0 / 18,
	";": 5.0 / 18, "thickspace": 5.0 / 18,
	"!": -3.0 / 18, "negthinspace": -3.0 / 18,
	" ": 0.25, "quad": 1, "qquad": 2,
	"enspace": 0.5,
}

// accents map to the mark set above the base.
var accents = map[string]string{
	"hat": "ˆ", "widehat": "ˆ", "tilde": "˜", "widetilde": "˜",
	"dot": "˙", "ddot": "¨", "acute": "´", "grave": "`", "check": "ˇ",
	"breve": "˘", "vec": "→", "overrightarrow": "→", "overleftarrow": "←",
	"mathring": "˚",
}

// fontCommands switch the face of their argument.
var fontCommands = map[string]Style{
	"mathrm": Regular, "mathup": Regular, "rm": Regular, "mathsf": Regular,
	"mathit": Italic, "mathbf": Bold, "boldsymbol": Bold, "bm": Bold,
	"mathtt": Mono, "mathcal": Italic, "mathscr": Italic, "mathfrak": Regular,
}

// textCommands set their argument as text.
var textCommands = map[string]Style{
	"text": Regular, "textrm": Regular, "textnormal": Regular, "mbox": Regular,
	"textup": Regular, "textsf": Regular, "textit": Italic, "emph": Italic,
	"textbf": Bold, "texttt": Mono, "hbox": Regular,
}

var doubleStruck = map[rune]string{
	'C': "ℂ", 'H': "ℍ", 'N': "ℕ", 'P': "ℙ", 'Q': "ℚ", 'R': "ℝ", 'Z': "ℤ",
}

// charSymbol classifies a plain character in math mode.
func charSymbol(c string) symbol {
	switch c {
	case "+":
		return symbol{"+", classBin, Regular}
	case "-":
		return symbol{"−", classBin, Regular}
	case "*":
		return symbol{"∗", classBin, Regular}
	case "=", "<", ">":
		return symbol{c, classRel, Regular}
	case ":":
		return symbol{":", classRel, Regular}
	case ",", ";":
		return symbol{c, classPunct, Regular}
	case "(", "[":
		return symbol{c, classOpen, Regular}
	case ")", "]", "!", "?":
		return symbol{c, classClose, Regular}
	case "'":
		return symbol{"′", classOrd, Regular}
	}
	if len(c) == 1 && isLetter(c[0]) {
		return symbol{c, classOrd, Italic}
	}
	return symbol{c, classOrd, Regular}
}
