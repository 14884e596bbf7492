// Package factory turns configuration entries into implementations. An entry
// names a registered type and carries a raw settings map that the factory
// decodes with Decode.
//
// The scheduler registers its search backends this way:
//
//	reg := factory.NewRegistry[solver.Backend]()
//	_ = reg.Register("search", func(conf map[string]any) (solver.Backend, error) {
//		var c solver.SearchConfig
//		if err := factory.Decode(conf, &c); err != nil {
//			return nil, err
//		}
//		return solver.NewSearchBackend(c, nil), nil
//	})
//	b, err := reg.Create(factory.ModuleConfig{Type: "search", Conf: map[string]any{"workers": 4}})
package factory
