package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/DeusData/javagraph/internal/parser"
)

func TestTypeSignature(t *testing.T) {
	tests := []struct {
		name string
		td   parser.TypeDecl
		want string
	}{
		{
			name: "bare class",
			td:   parser.TypeDecl{Kind: parser.KindClass, Name: "A"},
			want: "class A",
		},
		{
			name: "full class",
			td: parser.TypeDecl{
				Kind:       parser.KindClass,
				Modifiers:  []string{"public", "abstract"},
				Name:       "Repo",
				TypeParams: []string{"K", "V extends Comparable<V>"},
				Extends:    []string{"Base<K>"},
				Implements: []string{"Runnable", "java.io.Serializable"},
			},
			want: "public abstract class Repo<K, V extends Comparable<V>> extends Base<K> implements Runnable, java.io.Serializable",
		},
		{
			name: "interface",
			td: parser.TypeDecl{
				Kind:    parser.KindInterface,
				Name:    "I",
				Extends: []string{"A", "B"},
			},
			want: "interface I extends A, B",
		},
		{
			name: "enum",
			td: parser.TypeDecl{
				Kind:       parser.KindEnum,
				Modifiers:  []string{"public"},
				Name:       "Color",
				Implements: []string{"Shape"},
			},
			want: "public enum Color implements Shape",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, TypeSignature(&tt.td))
		})
	}
}

func TestMethodSignature(t *testing.T) {
	md := &parser.MethodDecl{
		Modifiers:  []string{"public", "static"},
		TypeParams: []string{"T"},
		ReturnType: "List<T>",
		Name:       "load",
		Params:     []string{"String path", "int... flags"},
		Throws:     []string{"IOException"},
	}
	assert.Equal(t, "public static <T> List<T> load(String path, int... flags) throws IOException", MethodSignature(md))
	assert.Equal(t, "void run()", MethodSignature(&parser.MethodDecl{ReturnType: "void", Name: "run"}))
}

func TestFieldSignature(t *testing.T) {
	fd := &parser.FieldDecl{Modifiers: []string{"private", "static", "final"}, Type: "int"}
	withInit := &parser.VarDecl{Name: "MAX", Type: "int", Initializer: "10", HasInitializer: true}
	assert.Equal(t, "private static final int MAX = 10", FieldSignature(fd, withInit))

	arr := &parser.VarDecl{Name: "xs", Type: "int[]"}
	assert.Equal(t, "private static final int[] xs", FieldSignature(fd, arr))
}
