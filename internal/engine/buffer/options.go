package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithID sets the buffer's identity instead of generating a new one.
func WithID(id ID) Option {
	return func(b *Buffer) {
		b.id = id
	}
}

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithName sets a display name, usually the file path.
func WithName(name string) Option {
	return func(b *Buffer) {
		b.name = name
	}
}
