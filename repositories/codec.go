package repositories

import (
	"contact-lab/errors"
	"fmt"
	"slices"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// rowsFile is the storage schema of the rows, equivalent to:
//
//	syntax = "proto3";
//	package contactlab.storage;
//
//	message Group {
//	  string account_id = 1;
//	  string group_id = 2;
//	  string group_name = 3;
//	  string parent_group_id = 4;
//	  string proto_group_uid = 5;
//	  string parent_proto_group_uid = 6;
//	  string persistent_data = 7;
//	}
//
//	message Contact {
//	  string meta_contact_id = 1;
//	  string account_id = 2;
//	  string address = 3;
//	  string meta_group_id = 4;
//	  string proto_group_uid = 5;
//	  string display_name = 6;
//	  bool user_defined = 7;
//	  repeated Detail details = 8;
//	  string persistent_data = 9;
//	  string server_display_name = 10;
//	}
//
//	message Detail {
//	  string name = 1;
//	  repeated string values = 2;
//	}
//
// Field numbers must never be reused.
var rowsFile = &descriptorpb.FileDescriptorProto{
	Name:    proto.String("contactlab/storage/rows.proto"),
	Package: proto.String("contactlab.storage"),
	Syntax:  proto.String("proto3"),
	MessageType: []*descriptorpb.DescriptorProto{
		{
			Name: proto.String("Group"),
			Field: []*descriptorpb.FieldDescriptorProto{
				stringField("account_id", 1),
				stringField("group_id", 2),
				stringField("group_name", 3),
				stringField("parent_group_id", 4),
				stringField("proto_group_uid", 5),
				stringField("parent_proto_group_uid", 6),
				stringField("persistent_data", 7),
			},
		},
		{
			Name: proto.String("Contact"),
			Field: []*descriptorpb.FieldDescriptorProto{
				stringField("meta_contact_id", 1),
				stringField("account_id", 2),
				stringField("address", 3),
				stringField("meta_group_id", 4),
				stringField("proto_group_uid", 5),
				stringField("display_name", 6),
				{
					Name:   proto.String("user_defined"),
					Number: proto.Int32(7),
					Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
					Type:   descriptorpb.FieldDescriptorProto_TYPE_BOOL.Enum(),
				},
				{
					Name:     proto.String("details"),
					Number:   proto.Int32(8),
					Label:    descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
					Type:     descriptorpb.FieldDescriptorProto_TYPE_MESSAGE.Enum(),
					TypeName: proto.String(".contactlab.storage.Detail"),
				},
				stringField("persistent_data", 9),
				stringField("server_display_name", 10),
			},
		},
		{
			Name: proto.String("Detail"),
			Field: []*descriptorpb.FieldDescriptorProto{
				stringField("name", 1),
				{
					Name:   proto.String("values"),
					Number: proto.Int32(2),
					Label:  descriptorpb.FieldDescriptorProto_LABEL_REPEATED.Enum(),
					Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
				},
			},
		},
	},
}

func stringField(name string, number int32) *descriptorpb.FieldDescriptorProto {
	return &descriptorpb.FieldDescriptorProto{
		Name:   proto.String(name),
		Number: proto.Int32(number),
		Label:  descriptorpb.FieldDescriptorProto_LABEL_OPTIONAL.Enum(),
		Type:   descriptorpb.FieldDescriptorProto_TYPE_STRING.Enum(),
	}
}

var groupDesc, contactDesc, detailDesc = mustRowDescriptors()

func mustRowDescriptors() (protoreflect.MessageDescriptor, protoreflect.MessageDescriptor, protoreflect.MessageDescriptor) {
	fd, err := protodesc.NewFile(rowsFile, new(protoregistry.Files))
	if err != nil {
		panic(fmt.Sprintf("invalid row schema: %v", err))
	}
	messages := fd.Messages()
	return messages.ByName("Group"), messages.ByName("Contact"), messages.ByName("Detail")
}

func setString(m *dynamicpb.Message, name protoreflect.Name, v string) {
	if v != "" {
		m.Set(m.Descriptor().Fields().ByName(name), protoreflect.ValueOfString(v))
	}
}

func getString(m *dynamicpb.Message, name protoreflect.Name) string {
	return m.Get(m.Descriptor().Fields().ByName(name)).String()
}

func fromGroupRow(row GroupRow) *dynamicpb.Message {
	m := dynamicpb.NewMessage(groupDesc)
	setString(m, "account_id", row.AccountID)
	setString(m, "group_id", row.GroupID)
	setString(m, "group_name", row.GroupName)
	setString(m, "parent_group_id", row.ParentGroupID)
	setString(m, "proto_group_uid", row.ProtoGroupUID)
	setString(m, "parent_proto_group_uid", row.ParentProtoGroupUID)
	setString(m, "persistent_data", row.PersistentData)
	return m
}

func toGroupRow(m *dynamicpb.Message) GroupRow {
	return GroupRow{
		AccountID:           getString(m, "account_id"),
		GroupID:             getString(m, "group_id"),
		GroupName:           getString(m, "group_name"),
		ParentGroupID:       getString(m, "parent_group_id"),
		ProtoGroupUID:       getString(m, "proto_group_uid"),
		ParentProtoGroupUID: getString(m, "parent_proto_group_uid"),
		PersistentData:      getString(m, "persistent_data"),
	}
}

// fromContactRow writes details sorted by name so equal rows encode alike.
func fromContactRow(row ContactRow) *dynamicpb.Message {
	m := dynamicpb.NewMessage(contactDesc)
	setString(m, "meta_contact_id", row.MetaContactID)
	setString(m, "account_id", row.AccountID)
	setString(m, "address", row.Address)
	setString(m, "meta_group_id", row.MetaGroupID)
	setString(m, "proto_group_uid", row.ProtoGroupUID)
	setString(m, "display_name", row.DisplayName)
	if row.UserDefined {
		m.Set(contactDesc.Fields().ByName("user_defined"), protoreflect.ValueOfBool(true))
	}
	setString(m, "persistent_data", row.PersistentData)
	setString(m, "server_display_name", row.ServerDisplayName)

	if len(row.Details) == 0 {
		return m
	}
	names := make([]string, 0, len(row.Details))
	for name := range row.Details {
		names = append(names, name)
	}
	slices.Sort(names)
	details := m.Mutable(contactDesc.Fields().ByName("details")).List()
	for _, name := range names {
		detail := dynamicpb.NewMessage(detailDesc)
		setString(detail, "name", name)
		values := detail.Mutable(detailDesc.Fields().ByName("values")).List()
		for _, value := range row.Details[name] {
			values.Append(protoreflect.ValueOfString(value))
		}
		details.Append(protoreflect.ValueOfMessage(detail))
	}
	return m
}

// toContactRow leaves Details nil when the row carries none.
func toContactRow(m *dynamicpb.Message) ContactRow {
	row := ContactRow{
		MetaContactID:     getString(m, "meta_contact_id"),
		AccountID:         getString(m, "account_id"),
		Address:           getString(m, "address"),
		MetaGroupID:       getString(m, "meta_group_id"),
		ProtoGroupUID:     getString(m, "proto_group_uid"),
		DisplayName:       getString(m, "display_name"),
		UserDefined:       m.Get(contactDesc.Fields().ByName("user_defined")).Bool(),
		PersistentData:    getString(m, "persistent_data"),
		ServerDisplayName: getString(m, "server_display_name"),
	}
	details := m.Get(contactDesc.Fields().ByName("details")).List()
	for i := 0; i < details.Len(); i++ {
		detail := details.Get(i).Message()
		name := detail.Get(detailDesc.Fields().ByName("name")).String()
		values := detail.Get(detailDesc.Fields().ByName("values")).List()
		if row.Details == nil {
			row.Details = make(map[string][]string)
		}
		for j := 0; j < values.Len(); j++ {
			row.Details[name] = append(row.Details[name], values.Get(j).String())
		}
	}
	return row
}

func marshalGroup(row GroupRow) ([]byte, error) {
	return proto.Marshal(fromGroupRow(row))
}

func unmarshalGroup(b []byte) (GroupRow, error) {
	m := dynamicpb.NewMessage(groupDesc)
	if err := proto.Unmarshal(b, m); err != nil {
		return GroupRow{}, fmt.Errorf("%w: group: %w", errors.ErrCorruptRow, err)
	}
	return toGroupRow(m), nil
}

func marshalContact(row ContactRow) ([]byte, error) {
	return proto.Marshal(fromContactRow(row))
}

func unmarshalContact(b []byte) (ContactRow, error) {
	m := dynamicpb.NewMessage(contactDesc)
	if err := proto.Unmarshal(b, m); err != nil {
		return ContactRow{}, fmt.Errorf("%w: contact: %w", errors.ErrCorruptRow, err)
	}
	return toContactRow(m), nil
}
