package node

// Category builds a category node whose children expand into a child ring
// on click or when the pointer crosses its outer boundary.
func Category(providerID, id, name, icon string, children ...Node) Node {
	return Node{
		ID:         id,
		Name:       name,
		Icon:       icon,
		Kind:       KindCategory,
		Children:   children,
		ProviderID: providerID,
		Bindings: Bindings{
			LeftClick:     On(Behavior{Kind: Expand}),
			BoundaryCross: On(Behavior{Kind: Expand}),
		},
	}
}

// Action builds a leaf that runs ref and dismisses the menu on left click.
// Shift-click runs it while keeping the menu open.
func Action(providerID, id, name, icon string, ref ActionRef) Node {
	return Node{
		ID:         id,
		Name:       name,
		Icon:       icon,
		Kind:       KindAction,
		ProviderID: providerID,
		Bindings: Bindings{
			LeftClick: On(Run(ref)).With(ModShift, RunKeepOpen(ref)),
		},
	}
}

// File builds a file leaf. Left click opens it through ref; dragging past the
// ring boundary starts a drag carrying the path.
func File(providerID, path, name string, ref ActionRef) Node {
	return Node{
		ID:         providerID + ":" + path,
		Name:       name,
		Icon:       "file",
		Kind:       KindFile,
		ProviderID: providerID,
		Metadata:   map[string]string{MetaPath: path},
		Bindings: Bindings{
			LeftClick:     On(Run(ref)).With(ModShift, RunKeepOpen(ref)),
			MiddleClick:   On(Behavior{Kind: Drag, Payload: []string{path}}),
			BoundaryCross: Interaction{Overrides: []Override{{Modifiers: ModAlt, Behavior: Behavior{Kind: Drag, Payload: []string{path}}}}},
		},
	}
}

// Folder builds a dynamically loaded folder node. Left click navigates into
// it, collapsing the current ring; Cmd-click opens the folder through ref.
func Folder(providerID, path, name string, ref ActionRef) Node {
	return Node{
		ID:                  providerID + ":" + path,
		Name:                name,
		Icon:                "folder",
		Kind:                KindFolder,
		ProviderID:          providerID,
		Metadata:            map[string]string{MetaPath: path},
		NeedsDynamicLoading: true,
		Bindings: Bindings{
			LeftClick:   On(Behavior{Kind: NavigateInto, Action: ref}).With(ModCmd, Run(ref)),
			MiddleClick: On(Behavior{Kind: Drag, Payload: []string{path}}),
		},
	}
}
