package mcpserver

// ExportFormatContract describes the class database export format so LLM
// consumers know what the tools operate on.
const ExportFormatContract = `# Eihwaz Class Export Format

Eihwaz serves queries over flat class database exports in INI form.

## Structure

` + "```" + `ini
[CategoryData_CfgVehicles]
header = ClassName,Source,Category,Parent,InheritsFrom,IsSimpleObject,NumProperties,Scope,Model
0 = "Car","core","CfgVehicles","","LandVehicle",false,42,2,"\core\car.p3d"
1 = "Tank","core","CfgVehicles","","LandVehicle",false,57,2,"\core\tank.p3d"

[Validation]
version = 1
` + "```" + `

## Rules

1. **Sections named ` + "`" + `CategoryData_<name>` + "`" + ` are categories.** Each holds one
   class table. Other sections (e.g. ` + "`" + `Validation` + "`" + `) carry export metadata.
2. **The ` + "`" + `header` + "`" + ` key lists the nine column names** in fixed order:
   ClassName, Source, Category, Parent, InheritsFrom, IsSimpleObject,
   NumProperties, Scope, Model.
3. **Every other key is one class row**: a quoted CSV record with exactly
   nine fields matching the header order.
4. **` + "`" + `InheritsFrom` + "`" + ` names the parent class** inside the same category.
   An empty value marks a root class. A parent name that never appears as
   a class in the category ends the chain where resolution stops.
5. **Class name lookups are case-insensitive by default.** Query tools
   return names in their exported spelling.
6. **Inheritance chains** start with the class itself and walk parent
   pointers outward. Cycles are tolerated: the chain stops before
   repeating a class.

## Query tools

- ` + "`" + `find_class` + "`" + ` / ` + "`" + `find_category` + "`" + ` resolve names to class data.
- ` + "`" + `class_path` + "`" + `, ` + "`" + `class_children` + "`" + `, ` + "`" + `class_descendants` + "`" + ` walk the hierarchy.
- ` + "`" + `common_ancestor` + "`" + ` finds the closest shared base of two classes.
- ` + "`" + `search_classes` + "`" + ` does full-text search over names, sources, and models.
`
