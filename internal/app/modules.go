package app

import (
	"github.com/specialistvlad/macrograph/internal/config"
	"github.com/specialistvlad/macrograph/internal/macro"
	"github.com/specialistvlad/macrograph/internal/session"
	"github.com/specialistvlad/macrograph/modules/fetch"
	"github.com/specialistvlad/macrograph/modules/path"
	"github.com/specialistvlad/macrograph/modules/script"
	"github.com/specialistvlad/macrograph/modules/shell"
)

// coreModules returns every macro module compiled into the binary, bound to
// s. Declared script macros are registered last so they can shadow built-ins.
func coreModules(s *session.Session, decls []script.Declaration) []macro.Module {
	return []macro.Module{
		&path.Module{Resolver: s.Resolver()},
		&fetch.Module{Resolver: s.Resolver(), Bridge: s.Bridge()},
		&shell.Module{Bridge: s.Bridge()},
		&script.Module{Bridge: s.Bridge(), Declared: decls},
	}
}

func declarations(declared []config.Macro) []script.Declaration {
	decls := make([]script.Declaration, 0, len(declared))
	for _, d := range declared {
		decls = append(decls, script.Declaration{
			Name:        d.Name,
			Runtime:     d.Runtime,
			Code:        d.Code,
			Description: d.Description,
		})
	}
	return decls
}
