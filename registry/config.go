package registry

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/tabledriver/typeschema/schema"
)

type UserTypeConfig struct {
	Name    string `yaml:"name"`
	SQLType string `yaml:"sqlType"`
}

type Config struct {
	UserTypes []UserTypeConfig `yaml:"userTypes"`
}

// LoadConfig registers the user types listed in a yaml file. Each entry
// maps an erased type name to an opaque descriptor with a declared
// underlying scalar type.
func (r *Registry) LoadConfig(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "couldn't open file")
	}
	defer f.Close()

	var config Config
	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return errors.Wrap(err, "couldn't decode yaml configuration")
	}

	for _, userType := range config.UserTypes {
		sqlType, err := scalarTypeByName(userType.SQLType)
		if err != nil {
			return errors.Wrapf(err, "couldn't configure user type %s", userType.Name)
		}
		userType := userType
		r.Register(userType.Name, func() (schema.ExternalDescriptor, error) {
			return OpaqueDescriptor{TypeName: userType.Name, Underlying: sqlType}, nil
		})
	}

	return nil
}

// OpaqueDescriptor is the descriptor used for configuration-registered user
// types: nothing but a name and the scalar type it serializes as.
type OpaqueDescriptor struct {
	TypeName   string
	Underlying schema.Type
}

func (d OpaqueDescriptor) Name() string {
	return d.TypeName
}

func (d OpaqueDescriptor) SQLType() schema.Type {
	return d.Underlying
}

func scalarTypeByName(name string) (schema.Type, error) {
	switch name {
	case "Boolean":
		return schema.Boolean, nil
	case "Byte":
		return schema.Byte, nil
	case "Short":
		return schema.Short, nil
	case "Integer":
		return schema.Integer, nil
	case "Long":
		return schema.Long, nil
	case "Float":
		return schema.Float, nil
	case "Double":
		return schema.Double, nil
	case "String":
		return schema.String, nil
	case "Binary":
		return schema.Binary, nil
	case "Timestamp":
		return schema.Timestamp, nil
	case "Date":
		return schema.Date, nil
	case "Decimal":
		return schema.DecimalDefault, nil
	}
	return schema.Type{}, errors.Errorf("unknown scalar type name: %s", name)
}
